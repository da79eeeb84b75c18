package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
	"github.com/bidwatch-dev/bidwatch/backend/internal/utils"
)

const sessionCookieName = "__bidwatch_token"

type AuthClaims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

func magicLinkKey(token string) string {
	return fmt.Sprintf("magic_link_%s", token)
}

// SendMagicLink mails a one-time login link to a known user. There are no
// passwords anywhere; the link is the whole login.
func (h *Handler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByEmail(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "user not found, check your spelling or contact your admin")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	token, err := utils.GenerateMagicToken()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// store token -> email with the link's lifetime; lookup consumes it
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	if err := h.redisClient.Set(ctx, magicLinkKey(token), user.Email, time.Duration(h.config.MagicLink.Expiration)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "magic_link",
		To:   user.Email,
		Data: domain.MagicLinkMailData{
			Link:       fmt.Sprintf("%s/auth/magic-login?token=%s", h.config.Server.BaseURL, token),
			Expiration: h.config.MagicLink.Expiration / 60, // shown in minutes
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	publishCtx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		publishCtx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, fmt.Sprintf("login link sent to %s", user.Email), nil)
}

// MagicLogin exchanges a valid one-time token for a session cookie. The
// token is invalidated no matter how the exchange goes.
func (h *Handler) MagicLogin(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.errorResponse(w, r, "no token provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	email, err := h.redisClient.Get(ctx, magicLinkKey(token)).Result()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, "invalid or expired token")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.redisClient.Del(ctx, magicLinkKey(token)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user, err := h.repository.GetUserByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "invalid or expired token")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := jwtToken.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	h.successResponse(w, r, "logged in", user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "logged out", nil)
}
