package listing

// PlotType is the zoning classification of a plot.
type PlotType string

const (
	PlotAgricultural PlotType = "Agricultural"
	PlotCommercial   PlotType = "Commercial"
	PlotIndustrial   PlotType = "Industrial"
	PlotResidential  PlotType = "Residential"
	PlotTouristic    PlotType = "Touristic"
)

// PlotTypeTable classifies plot zoning.
var PlotTypeTable = Table[PlotType]{
	Match(`agricultural`, PlotAgricultural),
	Match(`commercial`, PlotCommercial),
	Match(`industrial`, PlotIndustrial),
	Match(`residential`, PlotResidential),
	Match(`tourist(ic)?`, PlotTouristic),
}

// Plot is a land listing.
type Plot struct {
	Common

	Type        *PlotType `validate:"omitempty,oneof=Agricultural Commercial Industrial Residential Touristic"`
	CoveragePct *uint32   `validate:"omitempty,lte=100"`
	DensityPct  *uint32
	MaxHeightM  *float64 `validate:"omitempty,gte=0"`
	MaxStoreys  *uint32
}

// Kind implements Listing.
func (p *Plot) Kind() Kind { return KindPlot }
