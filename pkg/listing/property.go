package listing

// PropertyType is the built form of a property listing.
type PropertyType string

const (
	PropertyApartment  PropertyType = "Apartment"
	PropertyBungalow   PropertyType = "Bungalow"
	PropertyDuplex     PropertyType = "Duplex"
	PropertyHouse      PropertyType = "House"
	PropertyMaisonette PropertyType = "Maisonette"
	PropertyVilla      PropertyType = "Villa"
)

// PropertyTypeTable checks apartments and penthouses first since their
// fragments routinely mention houses as well.
var PropertyTypeTable = Table[PropertyType]{
	Match(`apartment|penthouse`, PropertyApartment),
	Match(`house`, PropertyHouse),
	Match(`semi-*\s*detached|duplex`, PropertyDuplex),
	Match(`maisonette`, PropertyMaisonette),
	Match(`bungalow`, PropertyBungalow),
	Match(`villa`, PropertyVilla),
}

// Condition is the construction state of a property.
type Condition string

const (
	ConditionNew               Condition = "New"
	ConditionResale            Condition = "Resale"
	ConditionUnderConstruction Condition = "UnderConstruction"
)

// ConditionTable checks resale first: a resale listing may still mention a
// neighbouring building under construction.
var ConditionTable = Table[Condition]{
	Match(`resale`, ConditionResale),
	Match(`brand\s+new`, ConditionNew),
	Match(`under\s+construction`, ConditionUnderConstruction),
}

// Property is a built property listing: house, apartment and the like.
type Property struct {
	Common

	Type             PropertyType `validate:"required,oneof=Apartment Bungalow Duplex House Maisonette Villa"`
	Condition        *Condition   `validate:"omitempty,oneof=New Resale UnderConstruction"`
	ConstructionYear *uint32      `validate:"omitempty,gte=1900,lte=2039"`
	Bedrooms         *uint8
	Bathrooms        *uint8
	PostalCode       *uint32
}

// Kind implements Listing.
func (p *Property) Kind() Kind { return KindProperty }
