// Package seed loads the demo sellers and their listings.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/service"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

const (
	VickiID = "3e590d1b-73b5-45a6-9806-4d52a70dec22"
	MandaID = "6c739af2-34fc-41aa-b456-d6c2812e58d7"

	DefaultVickiPassword = "vickiPassword123#"
	DefaultMandaPassword = "mandaPassword123#"
)

const (
	hour  = 60 * 60
	day   = 24 * hour
	month = 30 * day
	year  = 365 * day
)

// dogNamespace derives stable listing ids so reseeding finds existing rows.
var dogNamespace = uuid.MustParse("9c2f1e1a-5d0b-4c55-8d1e-0f3d4b6a2c71")

// Passwords for the seeded accounts. Empty values fall back to the defaults.
type Passwords struct {
	Vicki string
	Manda string
}

type seller struct {
	user  domain.User
	count int
	avg   float64
}

type listing struct {
	sellerID string
	builder  domain.DogBuilder
}

// Seeder inserts the demo data. Running it again is a no-op for rows that
// already exist.
type Seeder struct {
	store  repository.Store
	hasher service.Hasher
	logger *slog.Logger
	now    func() time.Time
}

// New creates a seeder.
func New(store repository.Store, hasher service.Hasher, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, hasher: hasher, logger: logger, now: time.Now}
}

// Run seeds users then dogs inside one transaction.
func (s *Seeder) Run(ctx context.Context, pw Passwords) error {
	sellers, err := s.sellers(pw)
	if err != nil {
		return err
	}

	var usersAdded, dogsAdded int
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		for _, sl := range sellers {
			added, err := ensureUser(ctx, tx.Users(), sl)
			if err != nil {
				return err
			}
			if added {
				usersAdded++
			}
		}

		now := s.now().UTC()
		for _, l := range listings() {
			added, err := ensureDog(ctx, tx, l, now)
			if err != nil {
				return err
			}
			if added {
				dogsAdded++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed data: %w", err)
	}

	s.logger.InfoContext(ctx, "seed data applied",
		slog.Int("users_added", usersAdded),
		slog.Int("dogs_added", dogsAdded),
	)
	return nil
}

func (s *Seeder) sellers(pw Passwords) ([]seller, error) {
	vickiHash, err := s.hasher.Hash(orDefault(pw.Vicki, DefaultVickiPassword))
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	mandaHash, err := s.hasher.Hash(orDefault(pw.Manda, DefaultMandaPassword))
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	now := s.now().UTC()
	return []seller{
		{
			user: domain.User{
				ID:              VickiID,
				Email:           "vicki@example.com",
				Name:            "Vicki",
				About:           strPtr("Ever since her 2018 debut, Vicki has been breeding prize-winning poodles.\n\nRay didn’t think she could do it, but she really showed him!"),
				PasswordHash:    vickiHash,
				ProfileImageURL: strPtr("https://live.staticflickr.com/65535/48259248522_6645c2f9f3_m.png"),
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			count: 7,
			avg:   5.0,
		},
		{
			user: domain.User{
				ID:              MandaID,
				Email:           "manda@example.com",
				Name:            "Manda",
				About:           strPtr("Manda loves dogs big and small! Unfortunately, she has too many, and they have taken over her home..."),
				PasswordHash:    mandaHash,
				ProfileImageURL: strPtr("https://live.staticflickr.com/65535/48259249582_58c1a06037.png"),
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			count: 35,
			avg:   4.5,
		},
	}, nil
}

func listings() []listing {
	return []listing{
		{VickiID, domain.DogBuilder{
			Name:             "Lulu",
			About:            "Lulu’s parents are pure-bred Poodles, and her mother is the 2018 best-in-show Poodle-Doodle winner. Her father is a good-for-nothing, lazy dog. Fortunately, Lulu takes after her mother, most of the time.",
			Breed:            "Poodle",
			Cost:             22599,
			Gender:           domain.GenderFemale,
			ImageURL:         "https://live.staticflickr.com/65535/48259180361_e385cbaa94_m.png",
			RelativeBirthday: 6 * month,
			RelativeCreation: 4 * hour,
		}},
		{MandaID, domain.DogBuilder{
			Name:             "Joey",
			About:            "Joey is a pure-bred Doberman Pinscher. By which I mean, he was fed bread, and his father is a Doberman! Be careful, his father is huge...! Joey is best for someone with a lot of outdoor space.",
			Breed:            "Doberman Mix",
			Cost:             39999,
			Gender:           domain.GenderMale,
			ImageURL:         "https://live.staticflickr.com/65535/48259249117_2b761a6f6f_m.png",
			RelativeBirthday: 3 * month,
			RelativeCreation: 6 * hour,
		}},
		{MandaID, domain.DogBuilder{
			Name:             "Snowball",
			About:            "Snowball is a go-getter kind of dog. You'll be very happy with him if you like energetic dogs. He enjoys chasing sticks, balls, frisbees, really anything that you throw! If you get Snowball, and you manage to find my keys, please send those back.",
			Breed:            "Lab mix",
			Cost:             19999,
			Gender:           domain.GenderMale,
			ImageURL:         "https://live.staticflickr.com/65535/48259249007_0e59e44318_m.png",
			RelativeBirthday: 8 * month,
			RelativeCreation: 1 * day,
		}},
		{MandaID, domain.DogBuilder{
			Name:             "Jack",
			About:            "Jack is a chill, fun-loving kinda dog. He's the kinda dog that likes piña coladas and dancin' in the rain.",
			Breed:            "German Shepherd",
			Cost:             39999,
			Gender:           domain.GenderMale,
			ImageURL:         "https://live.staticflickr.com/65535/48259180871_271e9cae35_m.png",
			RelativeBirthday: 1 * year,
			RelativeCreation: 3 * day,
		}},
	}
}

// DogID returns the stable id of the seeded listing with the given name.
func DogID(name string) string {
	return uuid.NewSHA1(dogNamespace, []byte(name)).String()
}

func ensureUser(ctx context.Context, users repository.UserRepository, sl seller) (bool, error) {
	if _, err := users.GetByID(ctx, sl.user.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	u := sl.user
	u.Rating = domain.Rated(sl.count, sl.avg)
	if err := users.Create(ctx, &u); err != nil {
		return false, err
	}
	return true, nil
}

func ensureDog(ctx context.Context, tx repository.Repositories, l listing, now time.Time) (bool, error) {
	id := DogID(l.builder.Name)
	if _, err := tx.Dogs().GetByID(ctx, id); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	owner, err := tx.Users().GetByIDForShare(ctx, l.sellerID)
	if err != nil {
		return false, err
	}
	if err := tx.Dogs().Create(ctx, l.builder.Build(id, owner, now)); err != nil {
		return false, err
	}
	return true, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func strPtr(s string) *string { return &s }
