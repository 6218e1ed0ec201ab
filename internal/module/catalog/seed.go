package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/pkg"
)

// SeedResult counts the rows created by Seed.
type SeedResult struct {
	Subjects int
	Packages int
	Videos   int
	Faculty  int
}

// Seed inserts demo catalog content in one transaction. It does nothing when
// subjects already exist.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var res SeedResult

	var existing int64
	if err := db.WithContext(ctx).Model(&domain.Subject{}).Count(&existing).Error; err != nil {
		return res, mapError(err)
	}
	if existing > 0 {
		return res, nil
	}

	err := pkg.WithTx(ctx, db, func(tx *gorm.DB) error {
		subjects := []domain.Subject{
			{Name: "Algebra", Code: "MATH-101", Description: "Equations, functions and polynomials.", Status: domain.StatusActive},
			{Name: "Biology", Code: "BIO-101", Description: "Cells, genetics and ecosystems.", Status: domain.StatusActive},
			{Name: "Chemistry", Code: "CHEM-101", Description: "Atoms, bonds and reactions.", Status: domain.StatusActive},
			{Name: "Geometry", Code: "MATH-102", Description: "Shapes, proofs and trigonometry.", Status: domain.StatusInactive},
			{Name: "Physics", Code: "PHYS-101", Description: "Motion, energy and waves.", Status: domain.StatusActive},
		}
		if err := tx.Create(&subjects).Error; err != nil {
			return fmt.Errorf("seed subjects: %w", err)
		}
		res.Subjects = len(subjects)

		var packages []domain.Package
		var videos []domain.Video
		for i, s := range subjects {
			packages = append(packages,
				domain.Package{Name: s.Name + " Essentials", SubjectID: s.ID, PriceCents: 2900 + int64(i)*500, Currency: "USD", ValidityDays: 180, Status: domain.StatusPublished},
				domain.Package{Name: s.Name + " Complete", SubjectID: s.ID, PriceCents: 7900 + int64(i)*1000, Currency: "USD", Status: domain.StatusDraft},
			)
			for n := 1; n <= 3; n++ {
				videos = append(videos, domain.Video{
					Title:           fmt.Sprintf("%s lesson %d", s.Name, n),
					SubjectID:       s.ID,
					DurationSeconds: 600 + n*240,
					Provider:        domain.VideoProviders[(i+n)%len(domain.VideoProviders)],
					Status:          domain.StatusPublished,
				})
			}
		}
		if err := tx.Create(&packages).Error; err != nil {
			return fmt.Errorf("seed packages: %w", err)
		}
		if err := tx.Create(&videos).Error; err != nil {
			return fmt.Errorf("seed videos: %w", err)
		}
		res.Packages, res.Videos = len(packages), len(videos)

		faculty := []domain.Faculty{
			{Name: "Ada Lovelace", Email: "ada@learnhub.test", Designation: "Head of Mathematics", Status: domain.StatusActive},
			{Name: "Rosalind Franklin", Email: "rosalind@learnhub.test", Designation: "Biology Lead", Status: domain.StatusActive},
			{Name: "Marie Curie", Email: "marie@learnhub.test", Designation: "Chemistry Lead", Status: domain.StatusActive},
			{Name: "Richard Feynman", Email: "richard@learnhub.test", Designation: "Visiting Lecturer", Status: domain.StatusInactive},
		}
		if err := tx.Create(&faculty).Error; err != nil {
			return fmt.Errorf("seed faculty: %w", err)
		}
		res.Faculty = len(faculty)
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}
