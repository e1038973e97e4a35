package util

import (
	"testing"

	"trackforge/internal/api/dto"
)

func TestValidateDTO_RequiredFieldMissing(t *testing.T) {
	req := dto.CreateProfileDTO{Platform: "instagram"}
	if err := ValidateDTO(&req); err == nil {
		t.Fatal("ValidateDTO should reject a CreateProfileDTO with no username")
	}
}

func TestValidateDTO_ValidDTOPasses(t *testing.T) {
	req := dto.CreateProfileDTO{Username: "alice", Platform: "instagram"}
	if err := ValidateDTO(&req); err != nil {
		t.Fatalf("ValidateDTO rejected a valid DTO: %v", err)
	}
}
