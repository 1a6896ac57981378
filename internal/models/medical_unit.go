package models

const UnitOther = "OTHER"

var medicalUnitNames = map[int]string{
	1:  "LOCAL HEALTH",
	2:  "NATIONAL HEALTH",
	3:  "IMSS",
	4:  "ISSSTE",
	12: "PRIVATE",
	13: UnitOther,
}

// MedicalUnitName maps an institution code to its display name.
// Unlisted codes fall into OTHER.
func MedicalUnitName(code int) string {
	if name, ok := medicalUnitNames[code]; ok {
		return name
	}
	return UnitOther
}
