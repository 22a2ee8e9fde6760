package session

import (
	"context"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"quiknote-be/internal/entity"
)

const MaxAvatarSize = 5 << 20

// ProfileChanges holds the edited profile form. Nil fields were not on the
// form and are left as they are.
type ProfileChanges struct {
	Name            *string
	Email           *string
	Username        *string
	Phone           *string
	FullName        *string
	CurrentPassword string
}

type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UpdateProfile sends only the changed fields. Name, email and preferences
// are updated concurrently.
func (s *Session) UpdateProfile(ctx context.Context, changes ProfileChanges) (*entity.Profile, error) {
	current := s.Profile()
	if current == nil {
		return nil, ErrNotAuthenticated
	}

	nameChanged := changed(changes.Name, current.Name)
	emailChanged := changed(changes.Email, current.Email)
	prefs := current.Prefs
	prefsChanged := false
	for key, value := range map[string]*string{
		entity.PrefUsername: changes.Username,
		entity.PrefPhone:    changes.Phone,
		entity.PrefFullName: changes.FullName,
	} {
		if changed(value, current.Pref(key)) {
			prefs[key] = *value
			prefsChanged = true
		}
	}

	if !nameChanged && !emailChanged && !prefsChanged {
		return nil, ErrNoChanges
	}
	if emailChanged && changes.CurrentPassword == "" {
		return nil, ErrPasswordRequired
	}

	g, gctx := errgroup.WithContext(ctx)
	if nameChanged {
		g.Go(func() error {
			_, err := s.account.UpdateName(gctx, *changes.Name)
			return err
		})
	}
	if emailChanged {
		g.Go(func() error {
			_, err := s.account.UpdateEmail(gctx, *changes.Email, changes.CurrentPassword)
			return err
		})
	}
	if prefsChanged {
		g.Go(func() error {
			_, err := s.account.UpdatePreferences(gctx, prefs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error(module, "Failed to update profile", map[string]interface{}{
			"user_id": current.Id,
			"error":   err,
		})
		return nil, &OperationError{Op: "update profile", Err: err}
	}

	return s.refreshProfile(ctx, func(p *entity.Profile) {
		if nameChanged {
			p.Name = *changes.Name
		}
		if emailChanged {
			p.Email = *changes.Email
		}
		p.Prefs = prefs
	}), nil
}

// UploadAvatar replaces the profile image.
func (s *Session) UploadAvatar(ctx context.Context, upload Upload) (*entity.Profile, error) {
	current := s.Profile()
	if current == nil {
		return nil, ErrNotAuthenticated
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, ErrNotAnImage
	}
	if upload.Size > MaxAvatarSize {
		return nil, ErrImageTooLarge
	}

	if old := current.ProfileImageId(); old != "" {
		if err := s.files.Delete(ctx, old); err != nil {
			s.log.Warn(module, "Failed to delete previous avatar", map[string]interface{}{
				"file_id": old,
				"error":   err,
			})
		}
	}

	fileId, err := s.files.Upload(ctx, upload.Name, upload.ContentType, upload.Data)
	if err != nil {
		s.log.Error(module, "Failed to upload avatar", map[string]interface{}{"user_id": current.Id, "error": err})
		return nil, &OperationError{Op: "upload image", Err: err}
	}

	prefs := current.Prefs
	prefs[entity.PrefProfileImageId] = fileId
	if _, err := s.account.UpdatePreferences(ctx, prefs); err != nil {
		s.log.Error(module, "Failed to store avatar reference", map[string]interface{}{"file_id": fileId, "error": err})
		return nil, &OperationError{Op: "upload image", Err: err}
	}

	s.mu.Lock()
	s.avatarStamp = s.clock().UnixMilli()
	s.mu.Unlock()

	return s.refreshProfile(ctx, func(p *entity.Profile) { p.Prefs = prefs }), nil
}

// AvatarURL returns a cache-busted view URL of the profile image, or "".
func (s *Session) AvatarURL() string {
	s.mu.RLock()
	profile, stamp := s.profile, s.avatarStamp
	s.mu.RUnlock()
	if profile == nil || profile.ProfileImageId() == "" {
		return ""
	}

	url := s.files.ViewURL(profile.ProfileImageId())
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "t=" + strconv.FormatInt(stamp, 10)
}

// refreshProfile re-reads the profile. When that fails the known edits are
// applied to the cached copy instead.
func (s *Session) refreshProfile(ctx context.Context, apply func(*entity.Profile)) *entity.Profile {
	profile, err := s.account.CurrentProfile(ctx)
	if err != nil {
		s.log.Warn(module, "Failed to refresh profile", map[string]interface{}{"error": err})
		profile = s.Profile()
		if profile == nil {
			return nil
		}
		apply(profile)
	}
	s.setProfile(profile)
	return profile.Clone()
}

func changed(value *string, current string) bool {
	return value != nil && *value != current
}
