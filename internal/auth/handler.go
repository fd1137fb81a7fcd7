package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Oniqq60/performance_assessment/internal/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	service       UserService
	jwtSecret     []byte
	refreshWindow time.Duration
	rdb           *redis.Client
}

func NewUserHandler(service UserService, jwtSecret []byte, refreshWindow time.Duration, rdb *redis.Client) *Handler {
	return &Handler{
		service:       service,
		jwtSecret:     jwtSecret,
		refreshWindow: refreshWindow,
		rdb:           rdb,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ValidateName(req.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	role := RoleEmployee
	if req.Role != "" {
		switch Role(req.Role) {
		case RoleAdmin:
			role = RoleAdmin
		case RoleEmployee:
			role = RoleEmployee
		default:
			http.Error(w, "invalid role", http.StatusBadRequest)
			return
		}
	}

	// У сотрудника обязателен отдел и табельный номер
	if role == RoleEmployee {
		if err := ValidateDepartment(req.Department); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := ValidateEmployeeCode(req.EmployeeCode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	u := Users{
		ID:            uuid.New(),
		Name:          SanitizeString(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Username:      SanitizeString(req.Name),
		Employee_code: strings.ToUpper(strings.TrimSpace(req.EmployeeCode)),
		Password_hash: req.Password, // will be hashed in service
		Role:          role,
		Department:    SanitizeString(req.Department),
		Is_active:     true,
		Created_at:    time.Now(),
	}
	if role == RoleAdmin {
		u.Employee_code = ""
		u.Department = ""
	}
	if err := h.service.Register(r.Context(), u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp := dto.RegisterResponse{ID: u.ID.String(), Email: u.Email, Name: u.Name}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// AdminLogin обрабатывает POST /auth/admin/login
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, RoleAdmin)
}

// EmployeeLogin обрабатывает POST /auth/employee/login
func (h *Handler) EmployeeLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, RoleEmployee)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, role Role) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	// rate limit по identifier+ip
	ip := getClientIP(r)
	key := "auth:login:attempts:" + strings.ToLower(req.Identifier) + ":" + ip
	if cnt, err := h.rdb.Get(r.Context(), key).Int64(); err == nil && cnt >= 5 {
		http.Error(w, "too many attempts", http.StatusTooManyRequests)
		return
	}
	user, claims, err := h.service.Login(r.Context(), role, req.Identifier, req.Password)
	if err != nil {
		// increment attempts and set TTL on first failure
		val, _ := h.rdb.Incr(r.Context(), key).Result()
		if val == 1 {
			_ = h.rdb.Expire(r.Context(), key, 10*time.Minute).Err()
		}
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountDisabled) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "authentication service error", http.StatusInternalServerError)
		return
	}
	// success: reset counter
	_ = h.rdb.Del(r.Context(), key).Err()

	h.writeTokenResponse(w, user, claims)
}

func (h *Handler) writeTokenResponse(w http.ResponseWriter, user Users, claims Claims) {
	token, err := SignToken(claims, h.jwtSecret)
	if err != nil {
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}
	expiresIn := int64(0)
	if claims.ExpiresAt != nil {
		expiresIn = claims.ExpiresAt.Time.Unix() - time.Now().Unix()
	}
	if err := h.setAuthCookie(w, token, expiresIn); err != nil {
		log.Printf("login: failed to set auth cookie: %v", err)
	}
	resp := dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		User:        userResponse(user),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func userResponse(user Users) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		Department:   user.Department,
		EmployeeCode: user.Employee_code,
		CreatedAt:    user.Created_at,
	}
}

// getClientIP извлекает реальный IP клиента с учетом прокси
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

const tokenBlacklistPrefix = "auth:token:blacklist:"
const authCookieName = "access_token"

var errTokenRequired = errors.New("token required")

// Me обрабатывает GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tokenString, err := tokenFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	claims, err := ParseToken(tokenString, h.jwtSecret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if h.isBlacklisted(r, claims) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if claims.UserID == uuid.Nil {
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}

	user, err := h.service.Profile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		http.Error(w, "failed to fetch profile", http.StatusInternalServerError)
		return
	}

	resp := userResponse(user)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Refresh обрабатывает POST /auth/refresh. Принимает и просроченный токен,
// пока тот внутри refresh-окна: silent refresh с валидным токеном бессмысленен,
// а с давно протухшим — запрещён.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tokenString, err := tokenFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	claims, err := ParseExpiredToken(tokenString, h.jwtSecret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if claims.ExpiresAt == nil || claims.UserID == uuid.Nil {
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}
	if time.Since(claims.ExpiresAt.Time) > h.refreshWindow {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if h.isBlacklisted(r, claims) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, newClaims, err := h.service.Reissue(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrAccountDisabled) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		http.Error(w, "failed to refresh token", http.StatusInternalServerError)
		return
	}

	// Старый токен гасим, чтобы не жило два токена одной сессии
	h.blacklist(r, claims)

	h.writeTokenResponse(w, user, newClaims)
}

// Logout обрабатывает POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tokenString, err := tokenFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	claims, err := ParseToken(tokenString, h.jwtSecret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if claims.ID == "" || claims.ExpiresAt == nil {
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}

	h.clearAuthCookie(w)

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	key := tokenBlacklistPrefix + claims.ID
	if err := h.rdb.Set(r.Context(), key, "revoked", ttl).Err(); err != nil {
		http.Error(w, "failed to logout", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) isBlacklisted(r *http.Request, claims Claims) bool {
	if claims.ID == "" || h.rdb == nil {
		return false
	}
	key := tokenBlacklistPrefix + claims.ID
	exists, err := h.rdb.Exists(r.Context(), key).Result()
	// Если Redis недоступен, черный список не блокирует запрос
	return err == nil && exists > 0
}

func (h *Handler) blacklist(r *http.Request, claims Claims) {
	if claims.ID == "" || h.rdb == nil || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		ttl = time.Minute
	}
	key := tokenBlacklistPrefix + claims.ID
	_ = h.rdb.Set(r.Context(), key, "revoked", ttl).Err()
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string, expiresIn int64) error {
	if token == "" {
		return errors.New("empty token")
	}
	isSecure := os.Getenv("HTTPS_ENABLED") == "true" || os.Getenv("HTTPS_ENABLED") == "1"

	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure,
	}
	if expiresIn > 0 {
		duration := time.Duration(expiresIn) * time.Second
		cookie.Expires = time.Now().Add(duration)
		cookie.MaxAge = int(duration.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	isSecure := os.Getenv("HTTPS_ENABLED") == "true" || os.Getenv("HTTPS_ENABLED") == "1"
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errTokenRequired
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errTokenRequired
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errTokenRequired
	}

	return token, nil
}
