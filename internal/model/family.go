package model

type AgeGroup string

const (
	AgeGroupChild  AgeGroup = "child"
	AgeGroupTeen   AgeGroup = "teen"
	AgeGroupAdult  AgeGroup = "adult"
	AgeGroupSenior AgeGroup = "senior"
)

// SelfRelation marks the reserved member representing the account holder.
// Every scope has exactly one such member and it cannot be deleted.
const SelfRelation = "self"

type FamilyMember struct {
	Base
	Scope         string   `db:"scope" json:"-"`
	Name          string   `db:"name" json:"name"`
	Relation      string   `db:"relation" json:"relation"`
	AgeGroup      AgeGroup `db:"age_group" json:"age_group"`
	Gender        string   `db:"gender" json:"gender"`
	Pregnant      bool     `db:"pregnant" json:"pregnant"`
	Breastfeeding bool     `db:"breastfeeding" json:"breastfeeding"`
	Language      string   `db:"language" json:"language"`
}

type CreateFamilyMemberRequest struct {
	Name          string `json:"name" binding:"required"`
	Relation      string `json:"relation" binding:"required"`
	AgeGroup      string `json:"age_group" binding:"omitempty,oneof=child teen adult senior"`
	Gender        string `json:"gender"`
	Pregnant      bool   `json:"pregnant"`
	Breastfeeding bool   `json:"breastfeeding"`
	Language      string `json:"language"`
}

type UpdateFamilyMemberRequest struct {
	Name          *string `json:"name"`
	AgeGroup      *string `json:"age_group" binding:"omitempty,oneof=child teen adult senior"`
	Gender        *string `json:"gender"`
	Pregnant      *bool   `json:"pregnant"`
	Breastfeeding *bool   `json:"breastfeeding"`
	Language      *string `json:"language"`
}
