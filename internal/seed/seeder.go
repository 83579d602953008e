package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/flixsy/backend/internal/gamification"
	"github.com/flixsy/backend/internal/logger"
	"github.com/flixsy/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder fills a development database with realistic fake data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder instance.
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

var sectors = []string{"music", "gaming", "art", "tech", "sports", "food"}

// SeedDev populates users, the social graph, posts, likes, comments and
// stories. Every password is "password123" so any seeded account can be used
// for manual testing.
func (s *Seeder) SeedDev(userCount, postCount int) error {
	logger.Log.Info("seeding development data",
		zap.Int("users", userCount),
		zap.Int("posts", postCount),
	)

	users, err := s.seedUsers(userCount)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("seed follows: %w", err)
	}

	posts, err := s.seedPosts(users, postCount)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	if err := s.seedEngagement(users, posts); err != nil {
		return fmt.Errorf("seed engagement: %w", err)
	}

	if err := s.seedStories(users); err != nil {
		return fmt.Errorf("seed stories: %w", err)
	}

	logger.Log.Info("seeding complete")
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	// One shared hash keeps seeding fast; bcrypt at cost 12 per user would
	// take minutes.
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := strings.ToLower(gofakeit.Username())
		if len(username) < 3 {
			username = username + gofakeit.DigitN(3)
		}
		user := models.User{
			Username:     fmt.Sprintf("%s%d", username, i),
			Email:        fmt.Sprintf("%d_%s", i, strings.ToLower(gofakeit.Email())),
			PasswordHash: string(hash),
			Bio:          gofakeit.Sentence(8),
			ProfilePic:   gofakeit.ImageURL(200, 200),
			Sector:       sectors[rand.Intn(len(sectors))],
			IsVerified:   rand.Intn(10) == 0,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedFollows(users []models.User) error {
	for _, follower := range users {
		for i := 0; i < rand.Intn(8); i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			err := s.db.Transaction(func(tx *gorm.DB) error {
				edge := models.Follow{FollowerID: follower.ID, FolloweeID: target.ID}
				res := tx.Where(&edge).FirstOrCreate(&edge)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 {
					return gamification.Grant(tx, follower.ID, "follow")
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			UserID:    author.ID,
			Caption:   gofakeit.Sentence(12) + " #" + sectors[rand.Intn(len(sectors))],
			MediaURL:  gofakeit.ImageURL(800, 600),
			MediaType: models.MediaImage,
			Privacy:   models.PrivacyPublic,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, 0, -14), time.Now()),
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&post).Error; err != nil {
				return err
			}
			return gamification.Grant(tx, author.ID, "post")
		})
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedEngagement(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		for i := 0; i < rand.Intn(10); i++ {
			actor := users[rand.Intn(len(users))]
			err := s.db.Transaction(func(tx *gorm.DB) error {
				like := models.Like{UserID: actor.ID, PostID: post.ID}
				res := tx.Where(&like).FirstOrCreate(&like)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 {
					if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
						UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
						return err
					}
					return gamification.Grant(tx, actor.ID, "like")
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		for i := 0; i < rand.Intn(4); i++ {
			actor := users[rand.Intn(len(users))]
			err := s.db.Transaction(func(tx *gorm.DB) error {
				comment := models.Comment{
					UserID:  actor.ID,
					PostID:  post.ID,
					Content: gofakeit.Sentence(10),
				}
				if err := tx.Create(&comment).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
					UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error; err != nil {
					return err
				}
				return gamification.Grant(tx, actor.ID, "comment")
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedStories(users []models.User) error {
	for _, author := range users {
		if rand.Intn(3) != 0 {
			continue
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			story := models.Story{
				UserID:    author.ID,
				MediaURL:  gofakeit.ImageURL(400, 700),
				MediaType: models.MediaImage,
				ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
			}
			if err := tx.Create(&story).Error; err != nil {
				return err
			}
			return gamification.Grant(tx, author.ID, "story")
		})
		if err != nil {
			return err
		}
	}
	return nil
}
