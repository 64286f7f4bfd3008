// Seed tool: loads demo users and lost/found posts scattered around a center
// point so search and nearby lookups have something to return.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lostfound/recovery/backend/internal/geo"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"github.com/lostfound/recovery/backend/pkg/config"
)

var (
	firstNames = []string{"Maya", "Karim", "Lina", "Omar", "Nour", "Rami", "Sara", "Hadi"}
	items      = map[models.Category][]string{
		models.CategoryPerson:      {"Elderly man", "Child in red jacket"},
		models.CategoryCar:         {"Grey Kia Picanto", "White Toyota Corolla"},
		models.CategoryFurniture:   {"Wooden chair", "Office desk"},
		models.CategoryElectronics: {"iPhone 14", "Samsung Galaxy", "Laptop bag with MacBook"},
		models.CategoryDocuments:   {"Passport", "ID card", "Driving licence"},
		models.CategoryJewelry:     {"Gold ring", "Silver necklace"},
		models.CategoryClothing:    {"Blue scarf", "Leather jacket"},
		models.CategoryOther:       {"Keys with red keychain", "Black wallet", "Cat"},
	}
	places = []string{"Hamra Street", "City Mall", "Downtown", "Achrafieh", "Corniche", "Airport road"}
)

func main() {
	var numUsers, numPosts int
	var lat, lon, spreadKm float64
	var withoutCoords float64
	flag.IntVar(&numUsers, "users", 20, "number of users")
	flag.IntVar(&numPosts, "posts", 200, "number of posts")
	flag.Float64Var(&lat, "lat", 33.8938, "center latitude")
	flag.Float64Var(&lon, "lon", 35.5018, "center longitude")
	flag.Float64Var(&spreadKm, "spread-km", 50, "maximum distance of a post from the center")
	flag.Float64Var(&withoutCoords, "no-coords", 0.2, "fraction of posts stored without coordinates")
	flag.Parse()

	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize databases", "err", err)
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		logger.Fatal("auto migrate failed", "err", err)
	}

	ctx := context.Background()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	postRepo := repositories.NewPostgresPostRepository(db.Postgres)

	start := time.Now()
	users := make([]models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user := models.User{
			Email:     fmt.Sprintf("demo-%s@example.com", uuid.NewString()[:8]),
			FirstName: firstNames[r.Intn(len(firstNames))],
			LastName:  "Demo",
		}
		if err := userRepo.CreateUser(ctx, &user); err != nil {
			logger.Fatal("create user failed", "err", err)
		}
		users = append(users, user)
	}

	center := geo.Point{Latitude: lat, Longitude: lon}
	yearAgo := time.Now().UTC().Add(-365 * 24 * time.Hour)
	for i := 0; i < numPosts; i++ {
		post, images := randomPost(r, users[r.Intn(len(users))], center, spreadKm, withoutCoords)
		post.CreatedAt = yearAgo.Add(time.Duration(r.Int63n(int64(365 * 24 * time.Hour))))
		if err := postRepo.CreatePost(ctx, post, images); err != nil {
			logger.Fatal("create post failed", "err", err)
		}
	}

	logger.Info("seed done", "users", numUsers, "posts", numPosts, "took", time.Since(start).Truncate(time.Millisecond))
}

func randomPost(r *rand.Rand, owner models.User, center geo.Point, spreadKm, withoutCoords float64) (*models.Post, []models.NewPostImage) {
	category := models.Categories[r.Intn(len(models.Categories))]
	names := items[category]
	name := names[r.Intn(len(names))]

	postType := models.PostTypeLost
	if r.Intn(2) == 0 {
		postType = models.PostTypeFound
	}
	place := places[r.Intn(len(places))]

	post := &models.Post{
		UserID:       owner.ID,
		Title:        fmt.Sprintf("%s %s", titleVerb(postType), name),
		Description:  fmt.Sprintf("%s near %s. Please get in touch.", name, place),
		Type:         postType,
		Category:     category,
		LocationText: &place,
		ContactInfo:  fmt.Sprintf("+9617%07d", r.Intn(10_000_000)),
		Status:       models.PostStatusActive,
	}
	if r.Float64() >= withoutCoords {
		p := offset(center, r.Float64()*spreadKm, r.Float64()*2*math.Pi)
		post.Latitude = &p.Latitude
		post.Longitude = &p.Longitude
	}

	var images []models.NewPostImage
	for j := 0; j < r.Intn(4); j++ {
		images = append(images, models.NewPostImage{
			ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/640/480", uuid.NewString()),
		})
	}
	return post, images
}

func titleVerb(t models.PostType) string {
	if t == models.PostTypeFound {
		return "Found"
	}
	return "Lost"
}

// offset moves distanceKm from p along bearing (radians) on a sphere
func offset(p geo.Point, distanceKm, bearing float64) geo.Point {
	d := distanceKm / geo.EarthRadiusKm
	lat1 := p.Latitude * math.Pi / 180
	lon1 := p.Longitude * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(math.Sin(bearing)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	lon := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return geo.Point{Latitude: lat2 * 180 / math.Pi, Longitude: lon}
}
