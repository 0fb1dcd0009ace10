package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cinetrack/cinetrack/internal/database"
)

var (
	ErrEmailTaken    = errors.New("auth: email already registered")
	ErrUsernameTaken = errors.New("auth: username already registered")
	// ErrInvalidLogin is returned for both unknown email and wrong
	// password so the response does not leak which one failed.
	ErrInvalidLogin   = errors.New("auth: invalid email or password")
	ErrUnknownAccount = errors.New("auth: account not found")
)

// CredentialStore manages signup and login for both account
// partitions. Users and producers live in separate tables, so the
// same username or email may exist once in each partition.
type CredentialStore struct {
	db   *gorm.DB
	cost int
}

func NewCredentialStore(db *gorm.DB, bcryptCost int) *CredentialStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &CredentialStore{db: db, cost: bcryptCost}
}

// Signup creates an account in the partition for role. Duplicate
// email or username surfaces as ErrEmailTaken / ErrUsernameTaken.
// The pre-insert lookups give precise errors; the unique indexes on
// both columns remain the authoritative guard under concurrency, so
// a constraint violation on insert is translated too.
func (s *CredentialStore) Signup(ctx context.Context, role Role, username, email, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	var ident *Identity
	err = database.NewTransactionManager(s.db).WithTransaction(ctx, func(tx *gorm.DB) error {
		taken, err := s.lookupTaken(tx, role, username, email)
		if err != nil {
			return err
		}
		if taken != nil {
			return taken
		}
		id, err := s.insert(tx, role, username, email, string(hash))
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		ident = &Identity{ID: id, Username: username, Role: role}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ident, nil
}

// Login checks email and password against the partition for role.
func (s *CredentialStore) Login(ctx context.Context, role Role, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		id       uint
		username string
		hash     string
	)
	switch role {
	case RoleUser:
		var u database.User
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
			return nil, loginErr(err)
		}
		id, username, hash = u.ID, u.Username, u.PasswordHash
	case RoleProducer:
		var p database.Producer
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
			return nil, loginErr(err)
		}
		id, username, hash = p.ID, p.Username, p.PasswordHash
	default:
		return nil, ErrInvalidLogin
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidLogin
	}
	return &Identity{ID: id, Username: username, Role: role}, nil
}

// Resolve maps a verified token's username back to a live account
// row. A token may outlive its account, so absence is a normal
// outcome, not a bug.
func (s *CredentialStore) Resolve(ctx context.Context, role Role, username string) (*Identity, error) {
	switch role {
	case RoleUser:
		var u database.User
		if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
			return nil, resolveErr(err)
		}
		return &Identity{ID: u.ID, Username: u.Username, Role: RoleUser}, nil
	case RoleProducer:
		var p database.Producer
		if err := s.db.WithContext(ctx).Where("username = ?", username).First(&p).Error; err != nil {
			return nil, resolveErr(err)
		}
		return &Identity{ID: p.ID, Username: p.Username, Role: RoleProducer}, nil
	default:
		return nil, ErrUnknownAccount
	}
}

func (s *CredentialStore) lookupTaken(tx *gorm.DB, role Role, username, email string) (error, error) {
	var model interface{}
	switch role {
	case RoleUser:
		model = &database.User{}
	case RoleProducer:
		model = &database.Producer{}
	default:
		return nil, ErrUnknownAccount
	}

	var count int64
	if err := tx.Model(model).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return ErrEmailTaken, nil
	}
	if err := tx.Model(model).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return ErrUsernameTaken, nil
	}
	return nil, nil
}

func (s *CredentialStore) insert(tx *gorm.DB, role Role, username, email, hash string) (uint, error) {
	switch role {
	case RoleUser:
		u := database.User{Username: username, Email: email, PasswordHash: hash}
		if err := tx.Create(&u).Error; err != nil {
			return 0, err
		}
		return u.ID, nil
	case RoleProducer:
		p := database.Producer{Username: username, Email: email, PasswordHash: hash}
		if err := tx.Create(&p).Error; err != nil {
			return 0, err
		}
		return p.ID, nil
	default:
		return 0, ErrUnknownAccount
	}
}

func loginErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidLogin
	}
	return err
}

func resolveErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUnknownAccount
	}
	return err
}
