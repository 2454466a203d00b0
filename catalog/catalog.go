// Package catalog holds the fixed per-person shopping template used to
// derive an event's starting list from its headcount.
package catalog

import (
	"math"

	"churrasapp/models"
)

// TemplateItem describes one per-person line of the basic barbecue
// template. EstimatedCost is the unit cost in centavos.
type TemplateItem struct {
	Name              string
	Category          string
	Unit              string
	QuantityPerPerson float64
	EstimatedCost     int64
}

// BasicEventTemplate: 400 g of picanha, two beers and 250 g of charcoal
// per person.
var BasicEventTemplate = []TemplateItem{
	{Name: "Picanha", Category: "meat", Unit: "kg", QuantityPerPerson: 0.4, EstimatedCost: 8000},
	{Name: "Cerveja", Category: "drinks", Unit: "unit", QuantityPerPerson: 2, EstimatedCost: 500},
	{Name: "Carvão", Category: "charcoal", Unit: "kg", QuantityPerPerson: 0.25, EstimatedCost: 1500},
}

// CalculateItems derives the shopping list for a headcount. Quantities
// are quantityPerPerson × participants, rounded to two decimals.
func CalculateItems(estimatedParticipants int) []models.EventItem {
	if estimatedParticipants <= 0 {
		return nil
	}

	items := make([]models.EventItem, 0, len(BasicEventTemplate))
	for _, t := range BasicEventTemplate {
		q := t.QuantityPerPerson * float64(estimatedParticipants)
		items = append(items, models.EventItem{
			Name:          t.Name,
			Category:      t.Category,
			Quantity:      math.Round(q*100) / 100,
			Unit:          t.Unit,
			EstimatedCost: t.EstimatedCost,
		})
	}
	return items
}
