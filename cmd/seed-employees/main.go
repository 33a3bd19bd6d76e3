// seed-employees loads sample employees and this month's distributions for local testing.
//
// Usage:
//
//	DB_DRIVER=sqlite DB_PATH=gallon.db go run ./cmd/seed-employees -random 25
//
// TI001-TI005 are fixed; the rest get random TI#### ids. Distributions go through the
// recorder, so no employee ever exceeds the allowance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/models"
	"github.com/mmdatafocus/gallon_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var fixedEmployees = []models.NewEmployee{
	{EmployeeId: "TI001", Name: "Budi Santoso", Department: "Production", Grade: models.EmployeeGradeManager, Location: "Bekasi Production Plant"},
	{EmployeeId: "TI002", Name: "Sari Dewi", Department: "Quality Control", Grade: models.EmployeeGradeSeniorStaff, Location: "Bekasi Production Plant"},
	{EmployeeId: "TI003", Name: "Ahmad Rahman", Department: "Logistics", Grade: models.EmployeeGradeSupervisor, Location: "Jakarta Head Office"},
	{EmployeeId: "TI004", Name: "Maya Putri", Department: "Human Resources", Grade: models.EmployeeGradeAssistantManager, Location: "Jakarta Head Office"},
	{EmployeeId: "TI005", Name: "Rudi Hartono", Department: "Information Technology", Grade: models.EmployeeGradeSeniorStaff, Location: "Jakarta Head Office"},
}

var (
	departments = []string{
		"Production", "Quality Control", "Logistics", "Sales & Marketing", "Human Resources",
		"Finance", "Information Technology", "Procurement", "Maintenance", "Research & Development",
	}
	locations = []string{
		"Jakarta Head Office", "Bekasi Production Plant", "Surabaya Branch", "Bandung Branch",
		"Medan Branch", "Denpasar Branch", "Makassar Branch",
	}
	firstNames = []string{"Agus", "Dewi", "Eko", "Fitri", "Hendra", "Indah", "Joko", "Lestari", "Nur", "Putra", "Rina", "Wahyu"}
	lastNames  = []string{"Wijaya", "Susanto", "Kurniawan", "Setiawan", "Lestari", "Pratama", "Saputra", "Hidayat", "Nugroho"}
)

type seeder struct {
	ctx    context.Context
	db     *gorm.DB
	rng    *rand.Rand
	loc    *time.Location
	now    time.Time
	logger *logrus.Logger
}

func main() {
	randomCount := flag.Int("random", 25, "number of random employees to add")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	if err := models.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	s := &seeder{
		ctx:    context.Background(),
		db:     db,
		rng:    rand.New(rand.NewSource(*seed)),
		loc:    config.Location(),
		now:    time.Now(),
		logger: config.GetLogger(),
	}

	created := 0
	for i := range fixedEmployees {
		input := fixedEmployees[i]
		ok, err := s.employee(&input, true, 1+s.rng.Intn(5), 3)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed %s: %v\n", input.EmployeeId, err)
			os.Exit(1)
		}
		if ok {
			created++
		}
	}

	grades := models.Grades()
	for i := 0; i < *randomCount; i++ {
		input := models.NewEmployee{
			EmployeeId: fmt.Sprintf("TI%04d", s.rng.Intn(10000)),
			Name:       firstNames[s.rng.Intn(len(firstNames))] + " " + lastNames[s.rng.Intn(len(lastNames))],
			Department: departments[s.rng.Intn(len(departments))],
			Grade:      grades[s.rng.Intn(len(grades))],
			Location:   locations[s.rng.Intn(len(locations))],
		}
		// 90% active
		ok, err := s.employee(&input, s.rng.Intn(10) != 0, 1+s.rng.Intn(3), 4)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed %s: %v\n", input.EmployeeId, err)
			os.Exit(1)
		}
		if ok {
			created++
		}
	}
	fmt.Printf("Seeded %d employees (seed=%d)\n", created, *seed)
}

// employee creates input, records up to count distributions of 1..maxQty gallons on
// random days of the current month, then applies the active flag. Existing ids are skipped.
func (s *seeder) employee(input *models.NewEmployee, active bool, count int, maxQty int) (bool, error) {
	e, err := models.CreateEmployee(s.ctx, input)
	if errors.Is(err, models.ErrDuplicateExternalId) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for i := 0; i < count; i++ {
		recorder := models.NewTransactionRecorder(models.NewAllowanceLedger(s.db, utils.FixedClock(s.randomDayThisMonth()), s.loc), s.logger)
		_, err := recorder.Distribute(s.ctx, e.EmployeeId, 1+s.rng.Intn(maxQty))
		if errors.Is(err, models.ErrInsufficientAllowance) {
			break
		}
		if err != nil {
			return false, err
		}
	}

	if !active {
		if _, err := models.ToggleActiveEmployee(s.ctx, e.ID, false); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *seeder) randomDayThisMonth() time.Time {
	local := s.now.In(s.loc)
	day := 1 + s.rng.Intn(local.Day())
	return time.Date(local.Year(), local.Month(), day, 8+s.rng.Intn(9), s.rng.Intn(60), 0, 0, s.loc)
}
