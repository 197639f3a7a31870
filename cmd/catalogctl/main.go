// Command catalogctl: консольный клиент API каталога товаров.
// Сессия (пользователь и токен) хранится в ~/.catalog/session.json.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/catalog/internal/client"
	"github.com/magabrotheeeer/catalog/internal/models"
)

const defaultServer = "http://localhost:5000"

var errNotAdmin = errors.New("this command requires an administrator session, log in as an admin first")

type cli struct {
	server      string
	sessionPath string
	asJSON      bool
	timeout     time.Duration
	api         *client.Client
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, "error:", apiErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Клиент API каталога товаров",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
	}

	server := os.Getenv("CATALOG_URL")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&c.server, "server", server, "адрес сервера (CATALOG_URL)")
	root.PersistentFlags().StringVar(&c.sessionPath, "session", "", "файл сессии (по умолчанию ~/.catalog/session.json)")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "вывод в JSON")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "таймаут HTTP-запроса")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.itemsCmd(),
		c.profileCmd(),
		c.usersCmd(),
	)
	return root
}

func (c *cli) init() error {
	path := c.sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		path = p
	}
	s := client.NewSession(path)
	if err := s.Load(); err != nil {
		return err
	}
	c.api = client.New(c.server, s, client.WithHTTPClient(&http.Client{Timeout: c.timeout}))
	return nil
}

func ctxFrom(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 15*time.Second)
}

func (c *cli) registerCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Зарегистрироваться и войти",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			res, err := c.api.Register(ctx, username, email, password)
			if err != nil {
				return err
			}
			return c.printUser(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "имя пользователя")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "пароль")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Войти по email и паролю",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			res, err := c.api.Login(ctx, email, password)
			if err != nil {
				return err
			}
			return c.printUser(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "пароль")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.api.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Показать пользователя текущей сессии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, ok := c.api.Session().User()
			if !ok {
				return errors.New("not logged in")
			}
			return c.printUser(cmd.OutOrStdout(), u)
		},
	}
}

func (c *cli) itemsCmd() *cobra.Command {
	items := &cobra.Command{Use: "items", Short: "Товары"}

	list := &cobra.Command{
		Use:   "list",
		Short: "Все товары",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			res, err := c.api.Items(ctx)
			if err != nil {
				return err
			}
			return c.printItems(cmd.OutOrStdout(), res...)
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Товар по id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			it, err := c.api.Item(ctx, args[0])
			if err != nil {
				return err
			}
			return c.printItems(cmd.OutOrStdout(), it)
		},
	}

	var in models.ItemInput
	var price float64
	create := &cobra.Command{
		Use:   "create",
		Short: "Создать товар",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("price") {
				in.Price = &price
			}
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			it, err := c.api.CreateItem(ctx, in)
			if err != nil {
				return err
			}
			return c.printItems(cmd.OutOrStdout(), it)
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "название")
	create.Flags().StringVar(&in.Description, "description", "", "описание")
	create.Flags().Float64Var(&price, "price", 0, "цена")
	create.Flags().StringVar(&in.Category, "category", "", "категория")

	var title, description, category string
	var newPrice float64
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить переданные поля товара",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.ItemPatch
			f := cmd.Flags()
			if f.Changed("title") {
				patch.Title = &title
			}
			if f.Changed("description") {
				patch.Description = &description
			}
			if f.Changed("price") {
				patch.Price = &newPrice
			}
			if f.Changed("category") {
				patch.Category = &category
			}
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			it, err := c.api.UpdateItem(ctx, args[0], patch)
			if err != nil {
				return err
			}
			return c.printItems(cmd.OutOrStdout(), it)
		},
	}
	update.Flags().StringVar(&title, "title", "", "название")
	update.Flags().StringVar(&description, "description", "", "описание")
	update.Flags().Float64Var(&newPrice, "price", 0, "цена")
	update.Flags().StringVar(&category, "category", "", "категория")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить товар",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			msg, err := c.api.DeleteItem(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	items.AddCommand(list, get, create, update, remove)
	return items
}

func (c *cli) profileCmd() *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Профиль текущего пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			u, err := c.api.Profile(ctx)
			if err != nil {
				return err
			}
			return c.printUsers(cmd.OutOrStdout(), u)
		},
	}

	var username, email, password, current string
	update := &cobra.Command{
		Use:   "update",
		Short: "Изменить имя, email или пароль",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch models.ProfilePatch
			f := cmd.Flags()
			if f.Changed("username") {
				patch.Username = &username
			}
			if f.Changed("email") {
				patch.Email = &email
			}
			if f.Changed("password") {
				patch.Password = &password
			}
			if f.Changed("current-password") {
				patch.CurrentPassword = &current
			}
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			res, err := c.api.UpdateProfile(ctx, patch)
			if err != nil {
				return err
			}
			return c.printUser(cmd.OutOrStdout(), res)
		},
	}
	update.Flags().StringVar(&username, "username", "", "новое имя")
	update.Flags().StringVar(&email, "email", "", "новый email")
	update.Flags().StringVar(&password, "password", "", "новый пароль")
	update.Flags().StringVar(&current, "current-password", "", "текущий пароль, нужен для смены пароля")

	profile.AddCommand(update)
	return profile
}

func (c *cli) usersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Пользователи (только администратор)",
		// заменяет PersistentPreRunE корня, поэтому сессия загружается здесь же
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := c.init(); err != nil {
				return err
			}
			if !c.api.Session().IsAdmin() {
				return errNotAdmin
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Все пользователи",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			res, err := c.api.Users(ctx)
			if err != nil {
				return err
			}
			return c.printUsers(cmd.OutOrStdout(), res...)
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить пользователя и его товары",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := ctxFrom(cmd)
			defer cancel()
			msg, err := c.api.DeleteUser(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	users.AddCommand(list, remove)
	return users
}

func (c *cli) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printUser(w io.Writer, u models.AuthResult) error {
	if c.asJSON {
		return c.printJSON(w, u)
	}
	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(w, "%s <%s> id=%s role=%s\n", u.Username, u.Email, u.ID, role)
	return nil
}

func (c *cli) printItems(w io.Writer, items ...models.Item) error {
	if c.asJSON {
		if len(items) == 1 {
			return c.printJSON(w, items[0])
		}
		return c.printJSON(w, items)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Category", "Price", "Owner", "Updated"})
	for _, it := range items {
		table.Append([]string{
			it.ID,
			it.Title,
			it.Category,
			strconv.FormatFloat(it.Price, 'f', 2, 64),
			it.Owner.Username,
			it.UpdatedAt.Format(time.DateTime),
		})
	}
	table.Render()
	return nil
}

func (c *cli) printUsers(w io.Writer, users ...models.User) error {
	if c.asJSON {
		if len(users) == 1 {
			return c.printJSON(w, users[0])
		}
		return c.printJSON(w, users)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Username", "Email", "Admin", "Created"})
	for _, u := range users {
		table.Append([]string{
			u.ID,
			u.Username,
			u.Email,
			strconv.FormatBool(u.IsAdmin),
			u.CreatedAt.Format(time.DateTime),
		})
	}
	table.Render()
	return nil
}
