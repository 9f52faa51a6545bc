package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/repository"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type programReader interface {
	ListAll(ctx context.Context) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Program, error)
	Create(ctx context.Context, program *models.Program) error
}

type mosqueReader interface {
	List(ctx context.Context) ([]models.Mosque, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Mosque, error)
}

type profileReader interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	GetRole(ctx context.Context, id string) (models.Role, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	ListTeachers(ctx context.Context) ([]models.Profile, error)
}

type enrollmentReader interface {
	ProgramIDsByStudent(ctx context.Context, studentID string) (map[string]struct{}, error)
	ListByProgram(ctx context.Context, programID string) ([]models.Enrollment, error)
	Exists(ctx context.Context, programID, studentID string) (bool, error)
}

type mediaPublisher interface {
	Put(key string, data []byte, overwrite bool) (string, error)
	PublicURL(key string) string
}

// ProgramService serves the program directory, detail views and teacher or
// admin program creation.
type ProgramService struct {
	programs    programReader
	mosques     mosqueReader
	profiles    profileReader
	enrollments enrollmentReader
	media       mediaPublisher
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgramService constructs a ProgramService instance.
func NewProgramService(programs programReader, mosques mosqueReader, profiles profileReader, enrollments enrollmentReader, media mediaPublisher, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgramService{
		programs:    programs,
		mosques:     mosques,
		profiles:    profiles,
		enrollments: enrollments,
		media:       media,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Cached program views record the role they were shaped for. A hit is
// honored only while the caller still holds that role, so a reassignment
// never replays a payload built for the old role.
type cachedProgramList struct {
	Role     models.Role          `json:"role"`
	Programs []dto.ProgramSummary `json:"programs"`
}

type cachedProgramDetail struct {
	Role   models.Role       `json:"role"`
	Detail dto.ProgramDetail `json:"detail"`
}

// List returns the full program directory. Students additionally get an
// enrolled flag per row; a missing mosque or teacher reference degrades to
// empty display fields rather than failing the listing.
func (s *ProgramService) List(ctx context.Context, caller Caller) ([]dto.ProgramSummary, error) {
	cacheKey := programListKey(caller.ID)
	var cached cachedProgramList
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit && cached.Role == caller.Role {
		return cached.Programs, nil
	}

	programs, err := s.programs.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}

	mosqueByID, teacherByID, err := s.lookupReferences(ctx, programs)
	if err != nil {
		return nil, err
	}

	var enrolled map[string]struct{}
	if caller.IsStudent() {
		enrolled, err = s.enrollments.ProgramIDsByStudent(ctx, caller.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
		}
	}

	summaries := make([]dto.ProgramSummary, 0, len(programs))
	for i := range programs {
		summary := s.buildSummary(&programs[i], mosqueByID, teacherByID)
		if caller.IsStudent() {
			_, isEnrolled := enrolled[programs[i].ID]
			summary.Enrolled = &isEnrolled
		}
		summaries = append(summaries, summary)
	}

	_ = s.cache.Set(ctx, cacheKey, cachedProgramList{Role: caller.Role, Programs: summaries}, 0)
	return summaries, nil
}

// Detail returns the full program view. The roster is included only for the
// program's own teacher or an admin.
func (s *ProgramService) Detail(ctx context.Context, caller Caller, programID string) (*dto.ProgramDetail, error) {
	cacheKey := programDetailKey(programID, caller.ID)
	var cached cachedProgramDetail
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit && cached.Role == caller.Role {
		return &cached.Detail, nil
	}

	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	mosqueByID, teacherByID, err := s.lookupReferences(ctx, []models.Program{*program})
	if err != nil {
		return nil, err
	}

	detail := &dto.ProgramDetail{ProgramSummary: s.buildSummary(program, mosqueByID, teacherByID)}
	if mosque, ok := mosqueByID[program.MosqueID]; ok {
		detail.MosqueName = mosque.Name
		detail.MosqueAddress = mosque.Address
	}

	if caller.IsStudent() {
		isEnrolled, err := s.enrollments.Exists(ctx, program.ID, caller.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		detail.IsEnrolled = isEnrolled
		detail.ProgramSummary.Enrolled = &isEnrolled
	}

	detail.IsTeacherOfProgram = caller.IsTeacher() && program.TeacherID == caller.ID
	detail.RosterVisible = caller.IsAdmin() || detail.IsTeacherOfProgram
	if detail.RosterVisible {
		_, roster, err := s.rosterEntries(ctx, program)
		if err != nil {
			return nil, err
		}
		detail.Roster = roster
	}

	_ = s.cache.Set(ctx, cacheKey, cachedProgramDetail{Role: caller.Role, Detail: *detail}, 0)
	return detail, nil
}

// Roster returns the program name and its enrolled students, sorted by name.
// Only the program's own teacher or an admin may read it.
func (s *ProgramService) Roster(ctx context.Context, caller Caller, programID string) (string, []dto.RosterEntry, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	if !caller.IsAdmin() && !(caller.IsTeacher() && program.TeacherID == caller.ID) {
		return "", nil, appErrors.Clone(appErrors.ErrForbidden, "roster is visible to the program teacher or an admin")
	}

	return s.rosterEntries(ctx, program)
}

func (s *ProgramService) rosterEntries(ctx context.Context, program *models.Program) (string, []dto.RosterEntry, error) {
	enrollments, err := s.enrollments.ListByProgram(ctx, program.ID)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	studentIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		studentIDs = append(studentIDs, e.StudentID)
	}
	profiles, err := s.profiles.ListByIDs(ctx, studentIDs)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profiles")
	}

	entries := make([]dto.RosterEntry, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		entry := dto.RosterEntry{ID: p.ID, FullName: p.DisplayName()}
		if s.media != nil {
			entry.AvatarURL = s.media.PublicURL(p.AvatarPath())
		}
		entries = append(entries, entry)
	}
	sortRoster(entries)
	return program.Name, entries, nil
}

// sortRoster orders entries by collated full name; entries without a name
// sink to the end.
func sortRoster(entries []dto.RosterEntry) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].FullName, entries[j].FullName
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return c.CompareString(a, b) < 0
	})
}

// CreationOptions returns the mosque and teacher directories for the
// program creation form. Teachers picking themselves do not need the
// teacher list, so it is populated only for admins.
func (s *ProgramService) CreationOptions(ctx context.Context, caller Caller) ([]dto.MosqueOption, []dto.TeacherOption, error) {
	mosques, err := s.mosques.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mosques")
	}
	mosqueOptions := make([]dto.MosqueOption, 0, len(mosques))
	for _, m := range mosques {
		mosqueOptions = append(mosqueOptions, dto.NewMosqueOption(m))
	}

	var teacherOptions []dto.TeacherOption
	if caller.IsAdmin() {
		teachers, err := s.profiles.ListTeachers(ctx)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
		}
		teacherOptions = make([]dto.TeacherOption, 0, len(teachers))
		for i := range teachers {
			teacherOptions = append(teacherOptions, dto.TeacherOption{ID: teachers[i].ID, FullName: teachers[i].DisplayName()})
		}
	}

	return mosqueOptions, teacherOptions, nil
}

// Upload carries a raw multipart file for program creation.
type Upload struct {
	Filename string
	Data     []byte
}

// Create inserts a new program. The thumbnail, when present, is stored first
// under a fresh unique key so the insert never references a missing object.
// Teachers always own the programs they create; only admins may assign a
// different teacher.
func (s *ProgramService) Create(ctx context.Context, caller Caller, req dto.CreateProgramRequest, thumbnail *Upload) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}

	teacherID := caller.ID
	if caller.IsAdmin() {
		if strings.TrimSpace(req.TeacherID) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher_id is required")
		}
		teacherID = strings.TrimSpace(req.TeacherID)
		role, err := s.profiles.GetRole(ctx, teacherID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "assigned teacher does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assigned teacher")
		}
		if role != models.RoleTeacher {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assigned user is not a teacher")
		}
	}

	program := &models.Program{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		MosqueID:  strings.TrimSpace(req.MosqueID),
		TeacherID: teacherID,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		program.Description = &desc
	}
	program.Price = parsePrice(req.Price)

	if thumbnail != nil && len(thumbnail.Data) > 0 {
		key := fmt.Sprintf("thumbnails/%s-%s", uuid.NewString(), sanitizeFilename(thumbnail.Filename))
		stored, err := s.media.Put(key, thumbnail.Data, false)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store thumbnail")
		}
		program.ImagePath = &stored
	}

	if err := s.programs.Create(ctx, program); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "mosque or teacher reference does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}

	s.cache.InvalidateProgramViews(ctx, program.ID, caller.ID)
	return program, nil
}

func (s *ProgramService) lookupReferences(ctx context.Context, programs []models.Program) (map[string]models.Mosque, map[string]models.Profile, error) {
	mosqueIDs := make([]string, 0, len(programs))
	teacherIDs := make([]string, 0, len(programs))
	seenMosque := make(map[string]struct{})
	seenTeacher := make(map[string]struct{})
	for i := range programs {
		if _, ok := seenMosque[programs[i].MosqueID]; !ok {
			seenMosque[programs[i].MosqueID] = struct{}{}
			mosqueIDs = append(mosqueIDs, programs[i].MosqueID)
		}
		if _, ok := seenTeacher[programs[i].TeacherID]; !ok {
			seenTeacher[programs[i].TeacherID] = struct{}{}
			teacherIDs = append(teacherIDs, programs[i].TeacherID)
		}
	}

	mosques, err := s.mosques.ListByIDs(ctx, mosqueIDs)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mosques")
	}
	mosqueByID := make(map[string]models.Mosque, len(mosques))
	for _, m := range mosques {
		mosqueByID[m.ID] = m
	}

	teachers, err := s.profiles.ListByIDs(ctx, teacherIDs)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	teacherByID := make(map[string]models.Profile, len(teachers))
	for _, t := range teachers {
		teacherByID[t.ID] = t
	}

	return mosqueByID, teacherByID, nil
}

func (s *ProgramService) buildSummary(program *models.Program, mosqueByID map[string]models.Mosque, teacherByID map[string]models.Profile) dto.ProgramSummary {
	summary := dto.ProgramSummary{
		ID:          program.ID,
		Name:        program.Name,
		Description: program.Description,
		Price:       program.Price,
	}
	if s.media != nil && program.ImagePath != nil {
		summary.ThumbnailURL = s.media.PublicURL(*program.ImagePath)
	}
	if mosque, ok := mosqueByID[program.MosqueID]; ok {
		summary.Location = mosque.Location()
	}
	if teacher, ok := teacherByID[program.TeacherID]; ok {
		summary.TeacherName = teacher.DisplayName()
		if s.media != nil {
			summary.TeacherAvatarURL = s.media.PublicURL(teacher.AvatarPath())
		}
	}
	return summary
}

// parsePrice turns free-text input into a stored price. Thousands
// separators are stripped; anything that does not parse to a finite
// non-negative number means "no price".
func parsePrice(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil
	}
	return &value
}

// sanitizeFilename keeps only the base name and replaces path-hostile
// characters so user input never shapes directory structure.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
