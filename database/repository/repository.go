package repository

import (
	blockedRepo "courtside/database/repository/blocked"
	bookingRepo "courtside/database/repository/booking"
	courtRepo "courtside/database/repository/court"
)

// Re-export the BookingRepository interface and constructors.
type BookingRepository = bookingRepo.BookingRepository

var (
	NewMongoBookingRepo  = bookingRepo.NewMongoBookingRepo
	NewMemoryBookingRepo = bookingRepo.NewMemoryBookingRepo
)

// Re-export the BlockedRepository interface and constructors.
type BlockedRepository = blockedRepo.BlockedRepository

var (
	NewMongoBlockedRepo  = blockedRepo.NewMongoBlockedRepo
	NewMemoryBlockedRepo = blockedRepo.NewMemoryBlockedRepo
)

// Re-export the court and facility repositories.
type CourtRepository = courtRepo.CourtRepository

type FacilityRepository = courtRepo.FacilityRepository

var (
	NewMongoCourtRepo     = courtRepo.NewMongoCourtRepo
	NewMemoryCourtRepo    = courtRepo.NewMemoryCourtRepo
	NewMongoFacilityRepo  = courtRepo.NewMongoFacilityRepo
	NewMemoryFacilityRepo = courtRepo.NewMemoryFacilityRepo
)
