// internal/handlers/user.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkarlin/onenight/internal/auth"
	"github.com/mkarlin/onenight/internal/database"
	"github.com/mkarlin/onenight/internal/models"
)

// EnsureEphemeralUser resolves the caller to a user id. Requests without a
// usable auth_token cookie get a throwaway villager account so people can
// sit down at a table without registering first; an expired or forged token
// is treated the same way rather than failing the join.
func EnsureEphemeralUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	cookieHeader := r.Header.Get("Cookie")
	if !strings.Contains(cookieHeader, "auth_token=") {
		return seatGuest(w)
	}

	userIDStr, err := auth.AuthenticateJWT(extractTokenFromCookie(cookieHeader))
	if err != nil {
		return seatGuest(w)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}

// seatGuest creates an ephemeral account and hands its session cookie back.
// Guests keep their id if they later claim the account, so any games played
// before claiming still count toward their record.
func seatGuest(w http.ResponseWriter) (uuid.UUID, error) {
	guest := models.User{
		Username:    "villager",
		IsEphemeral: true,
	}
	if err := database.CreateUser(context.Background(), &guest); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	token, err := auth.CreateJWT(guest.ID.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to sign guest token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return guest.ID, nil
}

type claimEphemeralRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// ClaimEphemeralHandler upgrades a guest account into a registered one in
// place, so game history and the rating attached to the id carry over.
func ClaimEphemeralHandler(w http.ResponseWriter, r *http.Request) {
	userIDStr, err := auth.AuthenticateJWT(extractTokenFromCookie(r.Header.Get("Cookie")))
	if err != nil {
		writeFail(w, http.StatusForbidden, "invalid token")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		writeFail(w, http.StatusForbidden, "invalid user id in token")
		return
	}

	u, err := database.GetUserByID(r.Context(), userID)
	if err != nil {
		writeFail(w, http.StatusNotFound, "user not found")
		return
	}
	if !u.IsEphemeral {
		writeFail(w, http.StatusBadRequest, "account is already registered")
		return
	}

	var req claimEphemeralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid claim payload")
		return
	}

	u.Email = req.Email
	u.Password = req.Password
	if req.Username != "" {
		u.Username = req.Username
	}
	u.IsEphemeral = false

	if err := database.UpdateUserCredentials(r.Context(), u); err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to claim account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// CreateUserHandler registers a permanent account directly, skipping the
// guest flow.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid payload")
		return
	}

	user := models.User{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	}
	if err := database.CreateUser(r.Context(), &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeFail(w, http.StatusConflict, "email already exists")
			return
		}
		writeFail(w, http.StatusInternalServerError, "error creating user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler checks credentials and answers with a JWT. The token is also
// set as the auth_token cookie, which is what the game endpoints read.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	token, err := database.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("failed to authenticate user: %v", err)
		writeFail(w, http.StatusForbidden, "authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TOKEN_EXPIRE_TIME_SEC,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
