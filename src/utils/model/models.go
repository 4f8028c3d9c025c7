package model

import "gorm.io/gorm"

// All returns every table owned by the indexer
func All() []interface{} {
	return []interface{}{
		&User{},
		&Bounty{},
		&Claim{},
		&Participation{},
		&VotingRound{},
		&LeaderboardEntry{},
		&Transaction{},
		&Price{},
	}
}

// AutoMigrate creates the schema from model definitions. Used for SQLite databases,
// PostgreSQL is migrated with sql_migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
