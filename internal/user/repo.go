package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/cache"
	"github.com/microblog-app/microblog-back/internal/database"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,24}$`)

// ValidateUsername checks the shape of a display name.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperr.Invalid("Le nom d'utilisateur doit contenir 3 à 24 caractères (lettres, chiffres, _ . -)")
	}
	return nil
}

func ExistsByUsername(username string) (bool, error) {
	var count int64
	if err := database.DB.Model(&User{}).Where("username_key = ?", Key(username)).Count(&count).Error; err != nil {
		return false, apperr.Transient(err)
	}
	return count > 0, nil
}

func FindByID(id uint) (*User, error) {
	var u User
	if err := database.DB.First(&u, "id = ?", id).Error; err != nil {
		return nil, lookupError(err)
	}
	return &u, nil
}

// FindByUsername is case-insensitive.
func FindByUsername(username string) (*User, error) {
	var u User
	if err := database.DB.Where("username_key = ?", Key(username)).First(&u).Error; err != nil {
		return nil, lookupError(err)
	}
	return &u, nil
}

func FindByExternalID(hash string) (*User, error) {
	var u User
	if err := database.DB.Where("hashed_google_id = ?", hash).First(&u).Error; err != nil {
		return nil, lookupError(err)
	}
	return &u, nil
}

// Register creates the account bound to an external identity.
func Register(username, externalIDHash string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if externalIDHash == "" {
		return nil, apperr.Invalid("Identité externe manquante")
	}

	newUser := User{
		Username:       username,
		UsernameKey:    Key(username),
		ExternalIDHash: externalIDHash,
		MemberSince:    time.Now().UTC(),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username_key = ?", newUser.UsernameKey).Count(&count).Error; err != nil {
			return apperr.Transient(err)
		}
		if count > 0 {
			return apperr.Conflict("Nom d'utilisateur déjà utilisé")
		}
		if err := tx.Model(&User{}).Where("hashed_google_id = ?", externalIDHash).Count(&count).Error; err != nil {
			return apperr.Transient(err)
		}
		if count > 0 {
			return apperr.Conflict("Ce compte Google est déjà enregistré")
		}
		if err := tx.Create(&newUser).Error; err != nil {
			return writeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &newUser, nil
}

// Rename changes the display name and carries it onto the user's posts.
func Rename(userID uint, newUsername string) (*User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if err := ValidateUsername(newUsername); err != nil {
		return nil, err
	}
	newKey := Key(newUsername)

	var u User
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			return lookupError(err)
		}

		if newKey != u.UsernameKey {
			var count int64
			if err := tx.Model(&User{}).Where("username_key = ? AND id <> ?", newKey, userID).Count(&count).Error; err != nil {
				return apperr.Transient(err)
			}
			if count > 0 {
				return apperr.Conflict("Nom d'utilisateur déjà utilisé")
			}
		}

		oldKey := u.UsernameKey
		if err := tx.Model(&u).Updates(map[string]interface{}{
			"username":     newUsername,
			"username_key": newKey,
		}).Error; err != nil {
			return writeError(err)
		}
		u.Username, u.UsernameKey = newUsername, newKey

		if err := tx.Table("posts").Where("username_key = ?", oldKey).Updates(map[string]interface{}{
			"username":     newUsername,
			"username_key": newKey,
		}).Error; err != nil {
			return apperr.Transient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// cached feed pages carry the author name
	cache.InvalidateFeed(context.Background())
	return &u, nil
}

func SetAvatarURL(userID uint, url string) error {
	res := database.DB.Model(&User{}).Where("id = ?", userID).Update("avatar_url", url)
	if res.Error != nil {
		return apperr.Transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return apperr.Transient(err)
}

func writeError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("Nom d'utilisateur déjà utilisé")
	}
	return apperr.Transient(err)
}
