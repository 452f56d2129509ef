package config

import (
	"log"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/core/authz"
	"ember-portal/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedRoles(); err != nil {
		return err
	}
	if err := s.seedWhitelistQuestions(); err != nil {
		return err
	}
	if err := s.seedOwnerUser(); err != nil {
		log.Printf("⚠️ Owner seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// roleColors are the default display colors per role
var roleColors = map[string]string{
	authz.RoleMember:    "#9e9e9e",
	authz.RoleHelper:    "#4caf50",
	authz.RoleModerator: "#2196f3",
	authz.RoleAdmin:     "#f44336",
	authz.RoleOwner:     "#ffc107",
}

// defaultRolePermissions keep the lower staff tiers useful without
// raising their rank
var defaultRolePermissions = map[string][]string{
	authz.RoleHelper:    {"ticket.reply", "ticket.assign"},
	authz.RoleModerator: {"ticket.reply", "ticket.assign", "forum.moderate", "whitelist.review"},
}

// seedRoles creates the fixed role hierarchy rows if missing
func (s *Seeder) seedRoles() error {
	for _, name := range authz.Roles() {
		rank, _ := authz.RankOf(name)

		var count int64
		s.db.Model(&models.Role{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			continue
		}

		role := &models.Role{Name: name, Rank: rank, Color: roleColors[name]}
		if err := s.db.Create(role).Error; err != nil {
			return err
		}

		for _, key := range defaultRolePermissions[name] {
			perm := &models.RolePermission{RoleID: role.ID, PermissionKey: key}
			if err := s.db.Create(perm).Error; err != nil {
				log.Printf("⚠️ Skipping role permission %s/%s: %v", name, key, err)
			}
		}

		log.Printf("✅ Role seeded: %s (rank %d)", name, rank)
	}
	return nil
}

// seedWhitelistQuestions creates a starter questionnaire when none exists
func (s *Seeder) seedWhitelistQuestions() error {
	var count int64
	s.db.Model(&models.WhitelistQuestion{}).Count(&count)
	if count > 0 {
		return nil
	}

	questions := []models.WhitelistQuestion{
		{Prompt: "What is your in-game name?", Required: true, Position: 1, IsActive: true},
		{Prompt: "How old are you?", Required: true, Position: 2, IsActive: true},
		{Prompt: "Why do you want to join the server?", Required: true, Position: 3, IsActive: true},
		{Prompt: "Anything else we should know?", Required: false, Position: 4, IsActive: true},
	}

	for i := range questions {
		if err := s.db.Create(&questions[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Whitelist questions seeded: %d", len(questions))
	return nil
}

// seedOwnerUser seeds the default owner account
// This is for development/testing only
// In production, create the owner through a secure process
func (s *Seeder) seedOwnerUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role_name = ?", authz.RoleOwner).Count(&count)
	if count > 0 {
		return nil // Owner already exists
	}

	hashedPassword, err := password.Hash("owner123456")
	if err != nil {
		return err
	}

	owner := &models.User{
		Username: "owner",
		Email:    "owner@ember-portal.local",
		Password: hashedPassword,
		RoleName: authz.RoleOwner,
		IsActive: true,
	}

	if err := s.db.Create(owner).Error; err != nil {
		return err
	}

	log.Printf("✅ Owner user created: %s", owner.Username)
	return nil
}
