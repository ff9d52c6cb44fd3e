package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"despacho-backend/internal/models"
	"despacho-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func GetUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := "SELECT * FROM users ORDER BY name ASC"
		args := []interface{}{}

		if role := r.URL.Query().Get("role"); role != "" {
			query = "SELECT * FROM users WHERE role = $1 ORDER BY name ASC"
			args = append(args, role)
		}

		var users []models.User
		if err := db.Select(&users, query, args...); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}

		responses := make([]models.UserResponse, len(users))
		for i, user := range users {
			responses[i] = user.ToUserResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" || req.Name == "" {
			utils.RespondError(w, http.StatusBadRequest, "email, password and name are required")
			return
		}

		if req.Role != models.RoleDriver && req.Role != models.RoleAdmin {
			utils.RespondError(w, http.StatusBadRequest, "role must be driver or admin")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		user := models.User{
			ID:        uuid.New().String(),
			Email:     req.Email,
			Password:  string(hashed),
			Name:      req.Name,
			Role:      req.Role,
			CreatedAt: time.Now().Unix(),
			UpdatedAt: time.Now().Unix(),
		}

		query := `
			INSERT INTO users (id, email, password, name, role, created_at, updated_at)
			VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			log.Printf("❌ Failed to create user %s: %v", req.Email, err)
			utils.RespondError(w, http.StatusConflict, "User already exists or insert failed")
			return
		}

		log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
		utils.RespondJSON(w, http.StatusCreated, user.ToUserResponse())
	}
}

func DeleteUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		result, err := db.Exec("DELETE FROM users WHERE id = $1", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete user")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
