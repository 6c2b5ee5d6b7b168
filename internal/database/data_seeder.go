package database

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/locvowork/employee_profile_service/internal/domain"
	"github.com/locvowork/employee_profile_service/internal/validation"
)

// EmployeeWriter is the part of the employee service the seeder drives.
type EmployeeWriter interface {
	Create(ctx context.Context, fields validation.Fields, upload *domain.Upload) (*domain.Employee, error)
	Delete(ctx context.Context, id string) (*domain.Employee, error)
	All(ctx context.Context) ([]domain.Employee, error)
}

type DataSeeder struct {
	svc EmployeeWriter
	rnd *rand.Rand
}

func NewDataSeeder(svc EmployeeWriter) *DataSeeder {
	return &DataSeeder{svc: svc, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var (
	titles       = []string{"Mr", "Ms", "Mrs", "Dr", "Prof"}
	firstNames   = []string{"Ada", "Alan", "Grace", "Linus", "Barbara", "Ken", "Margaret", "Dennis", "Frances", "Edsger"}
	lastNames    = []string{"Lovelace", "Turing", "Hopper", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie", "Allen", "Dijkstra"}
	designations = []string{"Engineer", "Senior Engineer", "Architect", "Manager", "Analyst", "Designer", "QA Engineer", "DevOps Engineer"}
	cities       = []string{"New York", "Shanghai", "Hanoi", "Tokyo", "Seoul", "Berlin", "Taipei", "Bangkok", "Kuala Lumpur", "Jakarta"}
)

// SeedData creates count employees, each with a generated PNG avatar,
// using up to workers concurrent creates. Returned ids are in job order.
func (ds *DataSeeder) SeedData(ctx context.Context, count, workers int) ([]string, error) {
	start := time.Now()
	fmt.Printf("🚀 Seeding %d employees with %d workers...\n", count, workers)

	type job struct {
		fields validation.Fields
		upload *domain.Upload
	}
	jobs := make([]job, count)
	for i := range jobs {
		avatar, err := ds.avatar()
		if err != nil {
			return nil, fmt.Errorf("failed to render avatar: %w", err)
		}
		first := firstNames[ds.rnd.Intn(len(firstNames))]
		last := lastNames[ds.rnd.Intn(len(lastNames))]
		jobs[i] = job{
			fields: ds.fields(first, last),
			upload: &domain.Upload{
				Filename:    fmt.Sprintf("%s-%s.png", first, last),
				ContentType: "image/png",
				Data:        avatar,
			},
		}
	}

	if workers < 1 {
		workers = 1
	}
	ids := make([]string, count)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range jobs {
		i := i
		eg.Go(func() error {
			e, err := ds.svc.Create(egCtx, jobs[i].fields, jobs[i].upload)
			if err != nil {
				return fmt.Errorf("failed to create employee %d: %w", i+1, err)
			}
			ids[i] = e.ID
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	fmt.Printf("🎉 Created %d employees in %v\n", len(ids), time.Since(start))
	return ids, nil
}

// ClearData deletes every employee and returns how many were removed.
func (ds *DataSeeder) ClearData(ctx context.Context) (int, error) {
	fmt.Println("🗑️  Clearing data...")

	employees, err := ds.svc.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}
	for _, e := range employees {
		if _, err := ds.svc.Delete(ctx, e.ID); err != nil {
			return 0, fmt.Errorf("failed to delete employee %s: %w", e.ID, err)
		}
	}

	fmt.Printf("✅ Deleted %d employees\n", len(employees))
	return len(employees), nil
}

func (ds *DataSeeder) fields(first, last string) validation.Fields {
	dob := time.Date(1960+ds.rnd.Intn(45), time.Month(1+ds.rnd.Intn(12)), 1+ds.rnd.Intn(28), 0, 0, 0, 0, time.UTC)
	return validation.Fields{
		domain.FieldTitle:       titles[ds.rnd.Intn(len(titles))],
		domain.FieldName:        first + " " + last,
		domain.FieldDesignation: designations[ds.rnd.Intn(len(designations))],
		domain.FieldDOB:         dob.Format(domain.DateLayout),
		domain.FieldAddress:     fmt.Sprintf("%d Main Street, %s", 1+ds.rnd.Intn(999), cities[ds.rnd.Intn(len(cities))]),
	}
}

// avatar draws a small two-colour square.
func (ds *DataSeeder) avatar() ([]byte, error) {
	const size = 32
	bg := color.RGBA{R: uint8(ds.rnd.Intn(256)), G: uint8(ds.rnd.Intn(256)), B: uint8(ds.rnd.Intn(256)), A: 255}
	fg := color.RGBA{R: 255 - bg.R, G: 255 - bg.G, B: 255 - bg.B, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x >= size/4 && x < size*3/4 && y >= size/4 && y < size*3/4 {
				img.Set(x, y, fg)
			} else {
				img.Set(x, y, bg)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
)

// GetPresetCount returns the number of employees for a preset
func GetPresetCount(preset SeedPreset) int {
	switch preset {
	case PresetSmall:
		return 10
	case PresetMedium:
		return 100
	case PresetLarge:
		return 1000
	default:
		return 100
	}
}
