// Command seed fills the catalogue with sample travel options and can
// provision an admin account. Intended for development and demo
// environments.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Jacksonville", "Fort Worth", "Columbus", "Charlotte",
	"San Francisco", "Indianapolis", "Seattle", "Denver", "Washington DC",
	"Boston", "El Paso", "Nashville", "Detroit", "Oklahoma City",
	"Portland", "Las Vegas", "Memphis", "Louisville", "Baltimore",
}

var (
	airlines       = []string{"American Airlines", "Delta", "United", "Southwest", "JetBlue", "Alaska"}
	trainCompanies = []string{"Amtrak", "Metro-North", "LIRR", "Caltrain", "NJ Transit"}
	busCompanies   = []string{"Greyhound", "Megabus", "FlixBus", "Peter Pan", "BoltBus"}
)

func main() {
	truncate := flag.Bool("truncate", false, "delete existing travel options and bookings first")
	adminEmail := flag.String("admin-email", "", "provision an admin account with this email")
	adminPass := flag.String("admin-password", "", "password for the admin account")
	flights := flag.Int("flights", 50, "number of flights to create")
	trains := flag.Int("trains", 30, "number of trains to create")
	buses := flag.Int("buses", 40, "number of buses to create")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *truncate {
		// Bookings reference travel options, so they go first.
		for _, table := range []string{"bookings", "travel_options"} {
			if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				log.Fatalf("truncate %s: %v", table, err)
			}
		}
		log.Println("cleared existing travel options and bookings")
	}

	travel := repository.NewTravelRepo(db)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := map[model.TravelKind]int{}
	created[model.KindFlight] = seedKind(ctx, travel, rng, model.KindFlight, *flights)
	created[model.KindTrain] = seedKind(ctx, travel, rng, model.KindTrain, *trains)
	created[model.KindBus] = seedKind(ctx, travel, rng, model.KindBus, *buses)

	log.Printf("created %d flights, %d trains and %d buses",
		created[model.KindFlight], created[model.KindTrain], created[model.KindBus])

	if *adminEmail != "" {
		if *adminPass == "" {
			log.Fatal("-admin-password is required with -admin-email")
		}
		if err := provisionAdmin(ctx, db, cfg, *adminEmail, *adminPass); err != nil {
			log.Fatalf("provision admin: %v", err)
		}
	}
}

// seedKind inserts n random travel options of one kind, retrying on
// travel_id collisions.
func seedKind(ctx context.Context, travel *repository.TravelRepo, rng *rand.Rand, kind model.TravelKind, n int) int {
	count := 0
	for i := 0; i < n; i++ {
		opt := randomOption(rng, kind)
		err := travel.Create(ctx, opt)
		for errors.Is(err, repository.ErrTravelIDExists) {
			opt = randomOption(rng, kind)
			err = travel.Create(ctx, opt)
		}
		if err != nil {
			log.Printf("create %s: %v", opt.TravelID, err)
			continue
		}
		count++
	}
	return count
}

func randomOption(rng *rand.Rand, kind model.TravelKind) *model.TravelOption {
	source := cities[rng.Intn(len(cities))]
	destination := source
	for destination == source {
		destination = cities[rng.Intn(len(cities))]
	}

	var (
		travelID string
		maxDays  int
		price    int
		seats    int
	)
	switch kind {
	case model.KindFlight:
		carrier := airlines[rng.Intn(len(airlines))]
		travelID = fmt.Sprintf("%s%d", strings.ToUpper(carrier[:2]), 100+rng.Intn(9900))
		maxDays, price, seats = 30, 150+rng.Intn(651), 50+rng.Intn(151)
	case model.KindTrain:
		carrier := trainCompanies[rng.Intn(len(trainCompanies))]
		travelID = fmt.Sprintf("%s%d", strings.ToUpper(carrier[:3]), 100+rng.Intn(900))
		maxDays, price, seats = 15, 50+rng.Intn(251), 100+rng.Intn(301)
	default: // bus
		carrier := busCompanies[rng.Intn(len(busCompanies))]
		travelID = fmt.Sprintf("%s%d", strings.ToUpper(carrier[:3]), 100+rng.Intn(900))
		maxDays, price, seats = 10, 25+rng.Intn(126), 30+rng.Intn(31)
	}

	quarters := []int{0, 15, 30, 45}
	departure := time.Now().UTC().
		AddDate(0, 0, 1+rng.Intn(maxDays)).
		Add(time.Duration(6+rng.Intn(17)) * time.Hour).
		Add(time.Duration(quarters[rng.Intn(4)]) * time.Minute).
		Truncate(time.Minute)

	return &model.TravelOption{
		TravelID:       travelID,
		Kind:           kind,
		Source:         source,
		Destination:    destination,
		DepartureAt:    departure,
		Price:          decimal.NewFromInt(int64(price)),
		AvailableSeats: seats,
	}
}

// provisionAdmin creates the admin user, or promotes an existing user
// with that email.
func provisionAdmin(ctx context.Context, db *sql.DB, cfg config.Config, email, password string) error {
	users := repository.NewUserRepo(db)
	uid, err := users.Create(ctx, email, password, model.RoleAdmin, cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		u, getErr := users.GetByEmail(ctx, email)
		if getErr != nil {
			return getErr
		}
		if _, execErr := db.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", model.RoleAdmin, u.ID); execErr != nil {
			return execErr
		}
		log.Printf("promoted existing user %s to admin", email)
		return nil
	}
	if err != nil {
		return err
	}
	if err := repository.NewProfileRepo(db).CreateDefault(ctx, uid); err != nil {
		log.Printf("create admin profile: %v", err)
	}
	log.Printf("created admin user %s (id=%d)", email, uid)
	return nil
}
