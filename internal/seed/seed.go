package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/haritsetu/backend/internal/auth"
	"github.com/haritsetu/backend/internal/logger"
	"github.com/haritsetu/backend/internal/models"
	"github.com/haritsetu/backend/internal/store"
)

// UserData represents the structure of users in the JSON file
type UserData struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	Role       string   `json:"role"`
	Village    *string  `json:"village"`
	District   *string  `json:"district"`
	Department *string  `json:"department"`
	Expertise  []string `json:"expertise"`
}

// JSONData represents the structure of the JSON files
type JSONData struct {
	Users []UserData `json:"users"`
}

// DefaultPaths are tried in order by LoadUsers when no path is given.
var DefaultPaths = []string{"data/initial-users.json", "../../data/initial-users.json"}

// LoadUsers reads the seed file at path, or the first of DefaultPaths that
// exists when path is empty.
func LoadUsers(path string) ([]UserData, error) {
	candidates := DefaultPaths
	if path != "" {
		candidates = []string{path}
	}

	var lastErr error
	for _, candidate := range candidates {
		raw, err := os.ReadFile(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		var data JSONData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", candidate, err)
		}
		logger.Info("Loaded seed users", map[string]interface{}{"path": candidate, "count": len(data.Users)})
		return data.Users, nil
	}
	return nil, fmt.Errorf("failed to read users file: %w", lastErr)
}

// Users creates every user that does not exist yet, matched by email, and
// returns the stored records in input order. Entries with an unknown role are
// skipped.
func Users(ctx context.Context, users store.UserStore, data []UserData) ([]models.User, error) {
	var out []models.User
	for _, userData := range data {
		role, ok := models.ParseUserRole(userData.Role)
		if !ok {
			logger.Warn("Skipping seed user with unknown role", map[string]interface{}{
				"email": userData.Email,
				"role":  userData.Role,
			})
			continue
		}

		hashedPassword, err := auth.HashPassword(userData.Password)
		if err != nil {
			return out, fmt.Errorf("failed to hash password for %s: %w", userData.Email, err)
		}

		user := models.User{
			Email:          userData.Email,
			HashedPassword: hashedPassword,
			Name:           userData.Name,
			Phone:          userData.Phone,
			Role:           role,
			Village:        userData.Village,
			District:       userData.District,
			Department:     userData.Department,
			Expertise:      userData.Expertise,
			Verified:       true,
		}

		created, err := users.CreateUserIfMissing(ctx, &user)
		if err != nil {
			return out, fmt.Errorf("failed to create user %s: %w", userData.Email, err)
		}
		fields := map[string]interface{}{"email": user.Email, "role": user.Role, "id": user.ID}
		if created {
			logger.Info("Created user", fields)
		} else {
			logger.Debug("User already exists", fields)
		}
		out = append(out, user)
	}
	return out, nil
}
