// Command seeder loads the scheduling catalog from CSV files into the
// database. It is meant to be run once against an empty schema.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/naufalhakm/timetable-api/internal/csvio"
	"github.com/naufalhakm/timetable-api/internal/models"
	"github.com/naufalhakm/timetable-api/internal/repository"
	"github.com/naufalhakm/timetable-api/pkg/config"
	"github.com/naufalhakm/timetable-api/pkg/database"
	"github.com/naufalhakm/timetable-api/pkg/logger"
)

func main() {
	var files csvio.CatalogFiles
	flag.StringVar(&files.Teachers, "teachers", "seeds/teachers.csv", "path to teachers CSV")
	flag.StringVar(&files.Courses, "courses", "seeds/courses.csv", "path to courses CSV")
	flag.StringVar(&files.Rooms, "rooms", "seeds/rooms.csv", "path to rooms CSV")
	flag.StringVar(&files.TimeBins, "time-bins", "seeds/time_bins.csv", "path to time bins CSV")
	flag.StringVar(&files.Sections, "sections", "seeds/sections.csv", "path to sections CSV")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall seeding timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	catalog, err := csvio.LoadCatalog(files)
	if err != nil {
		sugar.Fatalw("failed to load seed files", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repo := repository.NewCatalogRepository(db)

	for _, day := range catalog.Days {
		if _, err := repo.CreateDay(ctx, day); err != nil {
			sugar.Fatalw("failed to seed day", "day", day, "error", err)
		}
	}

	for _, room := range catalog.Rooms {
		if _, err := repo.CreateRoom(ctx, room.Name); err != nil {
			sugar.Fatalw("failed to seed room", "room", room.Name, "error", err)
		}
	}

	for _, bin := range catalog.TimeBins {
		if _, err := repo.CreateTimeBin(ctx, bin.Start, bin.End); err != nil {
			sugar.Fatalw("failed to seed time bin", "start", bin.Start, "error", err)
		}
	}

	teacherIDs := make(map[string]int64, len(catalog.Teachers))
	for _, teacher := range catalog.Teachers {
		id, err := repo.CreateTeacher(ctx, teacher.Name)
		if err != nil {
			sugar.Fatalw("failed to seed teacher", "teacher", teacher.Name, "error", err)
		}
		teacherIDs[teacher.Name] = id
	}

	courseIDs := make(map[string]int64, len(catalog.Courses))
	for _, course := range catalog.Courses {
		id, err := repo.CreateCourse(ctx, models.Course{
			Name:     course.Name,
			Semester: course.Semester,
			Credits:  course.Credits,
			Delivery: course.Delivery,
		})
		if err != nil {
			sugar.Fatalw("failed to seed course", "course", course.Name, "error", err)
		}
		courseIDs[course.Name] = id
	}

	for _, section := range catalog.Sections {
		if _, err := repo.CreateSection(ctx, teacherIDs[section.Teacher], courseIDs[section.Course], section.ClassGroup); err != nil {
			sugar.Fatalw("failed to seed section", "teacher", section.Teacher, "course", section.Course, "error", err)
		}
	}

	sugar.Infow("catalog seeded",
		"days", len(catalog.Days),
		"rooms", len(catalog.Rooms),
		"timeBins", len(catalog.TimeBins),
		"teachers", len(catalog.Teachers),
		"courses", len(catalog.Courses),
		"sections", len(catalog.Sections),
	)
}
