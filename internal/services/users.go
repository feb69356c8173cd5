package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type UserService struct {
	db     *gorm.DB
	tokens *auth.TokenIssuer
	now    func() time.Time
}

func NewUserService(db *gorm.DB, tokens *auth.TokenIssuer, now func() time.Time) *UserService {
	return &UserService{db: db, tokens: tokens, now: now}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserInput carries the fields an administrator may set. Nil pointers leave
// the current value untouched on update.
type UserInput struct {
	Name          *string
	Email         *string
	Phone         *string
	Password      *string
	Role          *models.Role
	DepartmentID  *uint
	RehberGroupID *uint
	RehberID      *uint
}

type ProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperr.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Validation("invalid email address")
	}
	return email, nil
}

func hashNewPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}
	return hash, nil
}

func (s *UserService) ensureEmailFree(db *gorm.DB, email string, exceptID uint) error {
	var existing models.User

	err := db.Select("id").Where("email = ? AND id <> ?", email, exceptID).First(&existing).Error
	if err == nil {
		return apperr.Validation("email %q is already registered", email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal("failed to check email", err)
	}
	return nil
}

// Register creates a self-service account with the USER role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := models.RoleUser
	return s.Create(ctx, UserInput{
		Name:     &in.Name,
		Email:    &in.Email,
		Password: &in.Password,
		Role:     &role,
	})
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, lookupErr(err, "user")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized("Invalid password")
	}

	now := s.now()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, apperr.Internal("failed to record login", err)
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}

	slog.Info("User logged in", "user_id", user.ID)

	return &LoginResult{Token: token, User: &user}, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).
		Preload("Department").
		Preload("RehberGroup").
		Preload("Rehber").
		First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user")
	}

	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller auth.Identity, in ProfileInput) (*models.User, error) {
	return s.Update(ctx, caller.ID, UserInput{Name: in.Name, Email: in.Email, Password: in.Password})
}

// List returns every user ordered by name.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}

	if err := s.db.WithContext(ctx).
		Preload("Department").
		Preload("RehberGroup").
		Preload("Rehber").
		Order("name ASC, id ASC").
		Find(&users).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve users", err)
	}

	return users, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Email == nil {
		return nil, apperr.Validation("email is required")
	}
	if in.Password == nil {
		return nil, apperr.Validation("password is required")
	}

	user := &models.User{Role: models.RoleUser}
	if err := s.apply(s.db.WithContext(ctx), user, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	slog.Info("User created", "user_id", user.ID, "role", user.Role)

	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	if id == 0 {
		return nil, apperr.Validation("id is required")
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user")
	}

	if err := s.apply(db, &user, in); err != nil {
		return nil, err
	}

	if err := db.Omit("Department", "RehberGroup", "Rehber").Save(&user).Error; err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}

	return s.Get(ctx, user.ID)
}

// apply validates in and copies it onto user.
func (s *UserService) apply(db *gorm.DB, user *models.User, in UserInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("name must not be empty")
		}
		user.Name = name
	}

	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return err
		}
		if err := s.ensureEmailFree(db, email, user.ID); err != nil {
			return err
		}
		user.Email = email
	}

	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}

	if in.Password != nil {
		hash, err := hashNewPassword(*in.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	if in.Role != nil {
		if !in.Role.Valid() {
			return apperr.Validation("invalid role %q", *in.Role)
		}
		user.Role = *in.Role
	}

	if in.DepartmentID != nil {
		user.DepartmentID = nil
		if *in.DepartmentID != 0 {
			var department models.Department
			if err := db.Select("id").First(&department, *in.DepartmentID).Error; err != nil {
				return lookupErr(err, "department")
			}
			user.DepartmentID = in.DepartmentID
		}
	}

	if in.RehberGroupID != nil {
		user.RehberGroupID = nil
		if *in.RehberGroupID != 0 {
			var group models.RehberGroup
			if err := db.Select("id").First(&group, *in.RehberGroupID).Error; err != nil {
				return lookupErr(err, "rehber group")
			}
			user.RehberGroupID = in.RehberGroupID
		}
	}

	if in.RehberID != nil {
		user.RehberID = nil
		if *in.RehberID != 0 {
			if err := s.checkRehber(db, user.ID, *in.RehberID); err != nil {
				return err
			}
			user.RehberID = in.RehberID
		}
	}

	return nil
}

// checkRehber enforces that a supervisor reference points at another user
// holding the REHBER role.
func (s *UserService) checkRehber(db *gorm.DB, userID, rehberID uint) error {
	if userID != 0 && userID == rehberID {
		return apperr.Validation("a user cannot be their own rehber")
	}

	var rehber models.User
	if err := db.Select("id", "role").First(&rehber, rehberID).Error; err != nil {
		return lookupErr(err, "rehber")
	}

	if rehber.Role != models.RoleRehber {
		return apperr.Validation("user %d does not have the REHBER role", rehberID)
	}

	return nil
}

// Delete removes a user. Subordinates keep existing with their rehberId
// cleared and the user's notifications and comments go with them. Users that
// own projects or take part in issues cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			return lookupErr(err, "user")
		}

		var issueCount int64
		if err := tx.Model(&models.Issue{}).
			Where("assignee_id = ? OR reporter_id = ?", id, id).
			Count(&issueCount).Error; err != nil {
			return err
		}
		var projectCount int64
		if err := tx.Model(&models.Project{}).Where("owner_id = ?", id).Count(&projectCount).Error; err != nil {
			return err
		}
		if issueCount > 0 || projectCount > 0 {
			return apperr.Conflict("user still owns %d projects and is referenced by %d issues", projectCount, issueCount)
		}

		if err := tx.Model(&models.User{}).Where("rehber_id = ?", id).Update("rehber_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		return passthrough(err, "failed to delete user")
	}

	slog.Info("User deleted", "user_id", id)
	return nil
}
