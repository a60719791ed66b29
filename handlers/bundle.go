// File: waymate/handlers/bundle.go
package handlers

import (
	travellerRepo "waymate/database/repository/traveller"
	userRepo "waymate/database/repository/user"
	sosSvc "waymate/services/sos"
	storageSvc "waymate/services/storage"
	supporterSvc "waymate/services/supporter"
	userSvc "waymate/services/user"
)

// HandlerBundle groups all endpoint handlers into one struct so routes can be
// registered from a single place.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	Traveller *TravellerHandler
	Supporter *SupporterHandler
	User      *UserHandler
	Storage   *StorageHandler
}

// NewHandlerBundle wires handlers to their services.
func NewHandlerBundle(
	travellers travellerRepo.TravellerRepository,
	users userRepo.UserRepository,
	sos sosSvc.SOSService,
	supporters supporterSvc.SupporterService,
	identity userSvc.UserService,
	storage storageSvc.StorageService,
) *HandlerBundle {
	return &HandlerBundle{
		UserRepo:  users,
		Traveller: &TravellerHandler{Travellers: travellers, Users: users, SOS: sos},
		Supporter: &SupporterHandler{Svc: supporters},
		User:      &UserHandler{Svc: identity},
		Storage:   &StorageHandler{Svc: storage, Users: users},
	}
}
