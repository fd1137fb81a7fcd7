package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Role — роль пользователя с точки зрения клиента.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User — идентичность, которую отдаёт API. Неизменяема в рамках сессии,
// заменяется целиком при refresh.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Department   string `json:"department,omitempty"`
	EmployeeCode string `json:"employee_code,omitempty"`
}

// LoginPayload — ответ login и refresh эндпоинтов.
type LoginPayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	User        User   `json:"user"`
}

// APIError — ошибка, которую вернул сервер (не транспорт).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// IsUnauthorized сообщает, ответил ли сервер 401.
// Любой 401 обязан перевести сессию в Anonymous.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

const DefaultTimeout = 10 * time.Second

// Client — тонкий REST-клиент API. timeout задаёт максимальное время
// ожидания одного вызова.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login дергает ролевой login-эндпоинт: пути для админа и сотрудника разные,
// учетные данные не взаимозаменяемы.
func (c *Client) Login(ctx context.Context, role Role, identifier, password string) (LoginPayload, error) {
	path := "/auth/employee/login"
	if role == RoleAdmin {
		path = "/auth/admin/login"
	}

	body := map[string]string{"identifier": identifier, "password": password}
	var payload LoginPayload
	if err := c.do(ctx, http.MethodPost, path, "", body, &payload); err != nil {
		return LoginPayload{}, err
	}
	return payload, nil
}

func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) Refresh(ctx context.Context, token string) (LoginPayload, error) {
	var payload LoginPayload
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", token, nil, &payload); err != nil {
		return LoginPayload{}, err
	}
	return payload, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// EvaluateTask отправляет результат оценки сданной задачи.
func (c *Client) EvaluateTask(ctx context.Context, token, taskID string, score float64, feedback string) error {
	body := map[string]interface{}{"score": score, "feedback": feedback}
	return c.do(ctx, http.MethodPost, "/tasks/"+taskID+"/evaluate", token, body, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Транспортная ошибка: сервер недоступен или контекст отменён
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(message)),
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
