package enums

import "fmt"

// ProductCategory represents the canonical commodity categories supported by the catalog.
type ProductCategory string

const (
	ProductCategoryRice       ProductCategory = "rice"
	ProductCategoryWheat      ProductCategory = "wheat"
	ProductCategoryCorn       ProductCategory = "corn"
	ProductCategoryPulses     ProductCategory = "pulses"
	ProductCategorySpices     ProductCategory = "spices"
	ProductCategoryCotton     ProductCategory = "cotton"
	ProductCategorySugarcane  ProductCategory = "sugarcane"
	ProductCategoryVegetables ProductCategory = "vegetables"
	ProductCategoryFruits     ProductCategory = "fruits"
)

var validProductCategories = []ProductCategory{
	ProductCategoryRice,
	ProductCategoryWheat,
	ProductCategoryCorn,
	ProductCategoryPulses,
	ProductCategorySpices,
	ProductCategoryCotton,
	ProductCategorySugarcane,
	ProductCategoryVegetables,
	ProductCategoryFruits,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductGrade represents the canonical quality grades.
type ProductGrade string

const (
	ProductGradePremium  ProductGrade = "premium"
	ProductGradeA        ProductGrade = "grade_a"
	ProductGradeB        ProductGrade = "grade_b"
	ProductGradeStandard ProductGrade = "standard"
)

var validProductGrades = []ProductGrade{
	ProductGradePremium,
	ProductGradeA,
	ProductGradeB,
	ProductGradeStandard,
}

// String implements fmt.Stringer.
func (g ProductGrade) String() string {
	return string(g)
}

// IsValid reports whether the value matches a known ProductGrade.
func (g ProductGrade) IsValid() bool {
	for _, candidate := range validProductGrades {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseProductGrade converts raw input into a ProductGrade.
func ParseProductGrade(value string) (ProductGrade, error) {
	for _, candidate := range validProductGrades {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product grade %q", value)
}

// ProductUnit defines the available unit types for pricing.
type ProductUnit string

const (
	ProductUnitKg      ProductUnit = "kg"
	ProductUnitMaund   ProductUnit = "maund"
	ProductUnitQuintal ProductUnit = "quintal"
	ProductUnitTon     ProductUnit = "ton"
	ProductUnitBag     ProductUnit = "bag"
)

var validProductUnits = []ProductUnit{
	ProductUnitKg,
	ProductUnitMaund,
	ProductUnitQuintal,
	ProductUnitTon,
	ProductUnitBag,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value matches a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
