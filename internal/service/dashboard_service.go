package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type dashboardProgramReader interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Program, error)
	Count(ctx context.Context) (int, error)
}

type dashboardProfileReader interface {
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}

type dashboardEnrollmentReader interface {
	ProgramIDsByStudent(ctx context.Context, studentID string) (map[string]struct{}, error)
}

// DashboardService builds the role-shaped landing payload.
type DashboardService struct {
	programs    dashboardProgramReader
	profiles    dashboardProfileReader
	enrollments dashboardEnrollmentReader
	mosques     mosqueReader
	media       mediaPublisher
	cache       *CacheService
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(programs dashboardProgramReader, profiles dashboardProfileReader, enrollments dashboardEnrollmentReader, mosques mosqueReader, media mediaPublisher, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		programs:    programs,
		profiles:    profiles,
		enrollments: enrollments,
		mosques:     mosques,
		media:       media,
		cache:       cache,
		logger:      logger,
	}
}

// Get returns the dashboard for the caller's resolved role. Exactly one of
// the role members is populated.
func (s *DashboardService) Get(ctx context.Context, caller Caller) (*dto.Dashboard, error) {
	cacheKey := dashboardKey(caller.ID)
	var cached dto.Dashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit && cached.Role == caller.Role {
		return &cached, nil
	}

	dashboard := &dto.Dashboard{Role: caller.Role}
	var err error
	switch caller.Role {
	case models.RoleAdmin:
		dashboard.Admin, err = s.adminDashboard(ctx)
	case models.RoleTeacher:
		dashboard.Teacher, err = s.teacherDashboard(ctx, caller.ID)
	default:
		dashboard.Student, err = s.studentDashboard(ctx, caller.ID)
	}
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, cacheKey, dashboard, 0)
	return dashboard, nil
}

func (s *DashboardService) studentDashboard(ctx context.Context, studentID string) (*dto.StudentDashboard, error) {
	enrolled, err := s.enrollments.ProgramIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	names := make([]string, 0, len(enrolled))
	for programID := range enrolled {
		program, err := s.programs.FindByID(ctx, programID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
		}
		names = append(names, program.Name)
	}
	sort.Strings(names)
	return &dto.StudentDashboard{ProgramNames: names}, nil
}

func (s *DashboardService) teacherDashboard(ctx context.Context, teacherID string) (*dto.TeacherDashboard, error) {
	programs, err := s.programs.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}

	mosqueIDs := make([]string, 0, len(programs))
	seen := make(map[string]struct{})
	for i := range programs {
		if _, ok := seen[programs[i].MosqueID]; !ok {
			seen[programs[i].MosqueID] = struct{}{}
			mosqueIDs = append(mosqueIDs, programs[i].MosqueID)
		}
	}
	mosques, err := s.mosques.ListByIDs(ctx, mosqueIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mosques")
	}
	mosqueByID := make(map[string]models.Mosque, len(mosques))
	for _, m := range mosques {
		mosqueByID[m.ID] = m
	}

	summaries := make([]dto.ProgramSummary, 0, len(programs))
	for i := range programs {
		p := &programs[i]
		summary := dto.ProgramSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
		}
		if s.media != nil && p.ImagePath != nil {
			summary.ThumbnailURL = s.media.PublicURL(*p.ImagePath)
		}
		if mosque, ok := mosqueByID[p.MosqueID]; ok {
			summary.Location = mosque.Location()
		}
		summaries = append(summaries, summary)
	}
	return &dto.TeacherDashboard{Programs: summaries}, nil
}

func (s *DashboardService) adminDashboard(ctx context.Context) (*dto.AdminDashboard, error) {
	counts, err := s.profiles.CountByRole(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	programCount, err := s.programs.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count programs")
	}
	return &dto.AdminDashboard{UserCounts: counts, ProgramCount: programCount}, nil
}
