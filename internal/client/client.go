// Package client реализует Go-клиент API каталога. Client держит Session:
// после входа или регистрации токен сохраняется и подставляется в
// заголовок Authorization всех последующих запросов.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/catalog/internal/models"
)

// APIError — ответ сервера со статусом 4xx/5xx.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client обращается к API каталога.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задаёт http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// New создаёт Client для сервера baseURL (например http://localhost:5000).
func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: 10 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session возвращает сессию клиента.
func (c *Client) Session() *Session {
	return c.session
}

// Register регистрирует пользователя и сохраняет сессию.
func (c *Client) Register(ctx context.Context, username, email, password string) (models.AuthResult, error) {
	var res models.AuthResult
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &res); err != nil {
		return models.AuthResult{}, err
	}
	return res, c.session.Save(res)
}

// Login входит по email и паролю и сохраняет сессию.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	var res models.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return models.AuthResult{}, err
	}
	return res, c.session.Save(res)
}

// Logout очищает сессию. Сервер токены не хранит, поэтому запроса нет.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Items возвращает все товары.
func (c *Client) Items(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := c.do(ctx, http.MethodGet, "/items", nil, &items)
	return items, err
}

// Item возвращает товар по id.
func (c *Client) Item(ctx context.Context, id string) (models.Item, error) {
	var it models.Item
	err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil, &it)
	return it, err
}

// CreateItem создаёт товар от имени текущего пользователя.
func (c *Client) CreateItem(ctx context.Context, in models.ItemInput) (models.Item, error) {
	var it models.Item
	err := c.do(ctx, http.MethodPost, "/items", in, &it)
	return it, err
}

// UpdateItem меняет переданные поля товара.
func (c *Client) UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	var it models.Item
	err := c.do(ctx, http.MethodPut, "/items/"+url.PathEscape(id), patch, &it)
	return it, err
}

// DeleteItem удаляет товар и возвращает сообщение сервера.
func (c *Client) DeleteItem(ctx context.Context, id string) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, &res)
	return res.Message, err
}

// Profile возвращает профиль текущего пользователя.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/users/profile", nil, &u)
	return u, err
}

// UpdateProfile меняет профиль и сохраняет выданный сервером новый токен.
func (c *Client) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPut, "/users/profile", patch, &res); err != nil {
		return models.AuthResult{}, err
	}
	return res, c.session.Save(res)
}

// Users возвращает всех пользователей (только администратор).
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// DeleteUser удаляет пользователя (только администратор).
func (c *Client) DeleteUser(ctx context.Context, id string) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, &res)
	return res.Message, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := "client." + method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
