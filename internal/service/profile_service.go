package service

import (
	"context"
	"lingocode_backend/internal/model"
	"lingocode_backend/internal/repository"
	"lingocode_backend/internal/util"
)

type Levels struct {
	EnglishLevel     string `json:"englishLevel"`
	ProgrammingLevel string `json:"programmingLevel"`
}

type ProfileService struct {
	ProfileRepo *repository.ProfileRepository
}

func NewProfileService(profileRepo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{ProfileRepo: profileRepo}
}

// Levels 没有档案时返回默认等级
func (s *ProfileService) Levels(ctx context.Context, userID uint) (Levels, error) {
	profile, err := s.ProfileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return Levels{}, err
	}
	if profile == nil {
		return Levels{
			EnglishLevel:     util.DefaultEnglishLevel,
			ProgrammingLevel: util.DefaultProgrammingLevel,
		}, nil
	}
	return Levels{
		EnglishLevel:     profile.EnglishLevel,
		ProgrammingLevel: profile.ProgrammingLevel,
	}, nil
}

// UpdateLevels 空字段保留原值
func (s *ProfileService) UpdateLevels(ctx context.Context, userID uint, req Levels) (Levels, error) {
	current, err := s.Levels(ctx, userID)
	if err != nil {
		return Levels{}, err
	}

	if req.EnglishLevel != "" {
		if !util.Contains(util.EnglishLevels, req.EnglishLevel) {
			return Levels{}, util.ErrInvalidLevel
		}
		current.EnglishLevel = req.EnglishLevel
	}
	if req.ProgrammingLevel != "" {
		if !util.Contains(util.ProgrammingLevels, req.ProgrammingLevel) {
			return Levels{}, util.ErrInvalidLevel
		}
		current.ProgrammingLevel = req.ProgrammingLevel
	}

	err = s.ProfileRepo.UpsertLevels(ctx, &model.UserProfile{
		UserID:           userID,
		EnglishLevel:     current.EnglishLevel,
		ProgrammingLevel: current.ProgrammingLevel,
	})
	if err != nil {
		return Levels{}, err
	}
	return current, nil
}
