package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Enum values. Item categories, units and payment methods are the
// canonical English set; user-facing messages stay in Portuguese.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	RSVPPending = "pending"
	RSVPYes     = "yes"
	RSVPNo      = "no"
	RSVPMaybe   = "maybe"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

var (
	EventStatuses  = []string{StatusDraft, StatusActive, StatusCompleted, StatusCancelled}
	RSVPStatuses   = []string{RSVPPending, RSVPYes, RSVPNo, RSVPMaybe}
	PaymentStates  = []string{PaymentPending, PaymentPaid}
	PaymentMethods = []string{"pix", "cash", "transfer"}
	ItemCategories = []string{"meat", "drinks", "charcoal", "sides", "extras"}
	ItemUnits      = []string{"kg", "unit", "liter", "pack"}
)

var (
	uuidV4Re = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
	phoneRe  = regexp.MustCompile(`^(\+55\s?)?(\(?\d{2}\)?\s?)?\d{4,5}-?\d{4}$`)
)

// IsPublicID reports whether s looks like a generated public id.
func IsPublicID(s string) bool { return uuidV4Re.MatchString(s) }

// FieldError scopes a validation failure to a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every failed field of one entity.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "dados inválidos: " + strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// NormalizeEvent is the pure pre-persist step: trim strings, lowercase
// the status and apply defaults. Runs before every validation so that
// length and enum checks see canonical values.
func NormalizeEvent(e *Event) {
	e.Name = strings.TrimSpace(e.Name)
	e.Location = strings.TrimSpace(e.Location)
	e.Status = strings.ToLower(strings.TrimSpace(e.Status))
	if e.Status == "" {
		e.Status = StatusDraft
	}
}

// ValidateEvent checks every field and returns the full failure list.
// The future-date rule applies at creation only.
func ValidateEvent(e *Event, forCreate bool) error {
	var errs ValidationErrors

	switch n := len([]rune(e.Name)); {
	case n == 0:
		errs.add("name", "Nome do evento é obrigatório")
	case n < 3:
		errs.add("name", "Nome do evento deve ter pelo menos 3 caracteres")
	case n > 100:
		errs.add("name", "Nome do evento deve ter no máximo 100 caracteres")
	}

	if e.Date.IsZero() {
		errs.add("date", "Data do evento é obrigatória")
	} else if forCreate && !e.Date.After(time.Now()) {
		errs.add("date", "Data do evento deve ser no futuro")
	}

	switch n := len([]rune(e.Location)); {
	case n == 0:
		errs.add("location", "Local do evento é obrigatório")
	case n < 5:
		errs.add("location", "Local do evento deve ter pelo menos 5 caracteres")
	case n > 200:
		errs.add("location", "Local do evento deve ter no máximo 200 caracteres")
	}

	if !oneOf(e.Status, EventStatuses) {
		errs.add("status", "Status deve ser: draft, active, completed ou cancelled")
	}

	// Ordering is only checked when both dates are present.
	if e.ConfirmationDeadline != nil && !e.Date.IsZero() && !e.ConfirmationDeadline.Before(e.Date) {
		errs.add("confirmationDeadline", "Deadline de confirmação deve ser antes da data do evento")
	}

	switch {
	case e.EstimatedParticipants < 1:
		errs.add("estimatedParticipants", "Deve ter pelo menos 1 participante")
	case e.EstimatedParticipants > 50:
		errs.add("estimatedParticipants", "Máximo de 50 participantes permitido")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NormalizeGuest trims and lowercases, defaults the two status fields
// and keeps confirmedAt in sync with the RSVP: set when the guest says
// yes, cleared otherwise.
func NormalizeGuest(g *Guest) {
	g.Name = strings.TrimSpace(g.Name)
	g.Phone = strings.TrimSpace(g.Phone)
	g.RSVPStatus = strings.ToLower(strings.TrimSpace(g.RSVPStatus))
	g.PaymentStatus = strings.ToLower(strings.TrimSpace(g.PaymentStatus))
	g.PaymentMethod = strings.ToLower(strings.TrimSpace(g.PaymentMethod))
	if g.RSVPStatus == "" {
		g.RSVPStatus = RSVPPending
	}
	if g.PaymentStatus == "" {
		g.PaymentStatus = PaymentPending
	}
	if g.RSVPStatus == RSVPYes {
		if g.ConfirmedAt == nil {
			now := time.Now()
			g.ConfirmedAt = &now
		}
	} else {
		g.ConfirmedAt = nil
	}
}

// ValidateGuest checks every field and returns the full failure list.
func ValidateGuest(g *Guest) error {
	var errs ValidationErrors

	if g.EventID == "" {
		errs.add("eventId", "ID do evento é obrigatório")
	} else if !IsPublicID(g.EventID) {
		errs.add("eventId", "ID do evento deve ser um UUID válido")
	}

	switch n := len([]rune(g.Name)); {
	case n == 0:
		errs.add("name", "Nome do convidado é obrigatório")
	case n < 2:
		errs.add("name", "Nome do convidado deve ter pelo menos 2 caracteres")
	case n > 100:
		errs.add("name", "Nome do convidado deve ter no máximo 100 caracteres")
	}

	if g.Phone != "" {
		if len(g.Phone) > 20 {
			errs.add("phone", "Telefone deve ter no máximo 20 caracteres")
		} else if !phoneRe.MatchString(g.Phone) {
			errs.add("phone", "Formato de telefone inválido")
		}
	}

	if !oneOf(g.RSVPStatus, RSVPStatuses) {
		errs.add("rsvpStatus", "RSVP deve ser: pending, yes, no ou maybe")
	}
	if !oneOf(g.PaymentStatus, PaymentStates) {
		errs.add("paymentStatus", "Status de pagamento deve ser: pending ou paid")
	}
	if g.PaymentMethod != "" && !oneOf(g.PaymentMethod, PaymentMethods) {
		errs.add("paymentMethod", "Método de pagamento deve ser: pix, cash ou transfer")
	}
	// paid always carries a method.
	if g.PaymentStatus == PaymentPaid && g.PaymentMethod == "" {
		errs.add("paymentMethod", "Método de pagamento é obrigatório quando pago")
	}

	if g.ConfirmedAt != nil && g.ConfirmedAt.After(time.Now()) {
		errs.add("confirmedAt", "Data de confirmação não pode ser no futuro")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NormalizeItem trims and lowercases, and applies the purchased
// defaulting rule: a purchased item without a recorded actual cost
// takes its estimate. Re-running the step never changes it further.
func NormalizeItem(it *EventItem) {
	it.Name = strings.TrimSpace(it.Name)
	it.Category = strings.ToLower(strings.TrimSpace(it.Category))
	it.Unit = strings.ToLower(strings.TrimSpace(it.Unit))
	it.AssignedTo = strings.TrimSpace(it.AssignedTo)
	if it.IsPurchased && it.ActualCost == nil {
		cost := it.EstimatedCost
		it.ActualCost = &cost
	}
}

// ValidateItem checks every field and returns the full failure list.
func ValidateItem(it *EventItem) error {
	var errs ValidationErrors

	// Bound to an event or a reusable template, never both.
	switch {
	case it.IsTemplate && it.EventID != "":
		errs.add("eventId", "Template não pode pertencer a um evento")
	case !it.IsTemplate && it.EventID == "":
		errs.add("eventId", "ID do evento é obrigatório")
	case it.EventID != "" && !IsPublicID(it.EventID):
		errs.add("eventId", "ID do evento deve ser um UUID válido")
	}

	switch n := len([]rune(it.Name)); {
	case n == 0:
		errs.add("name", "Nome do item é obrigatório")
	case n < 2:
		errs.add("name", "Nome do item deve ter pelo menos 2 caracteres")
	case n > 100:
		errs.add("name", "Nome do item deve ter no máximo 100 caracteres")
	}

	if !oneOf(it.Category, ItemCategories) {
		errs.add("category", "Categoria deve ser: meat, drinks, charcoal, sides ou extras")
	}
	if it.Quantity < 0 {
		errs.add("quantity", "Quantidade não pode ser negativa")
	}
	if !oneOf(it.Unit, ItemUnits) {
		errs.add("unit", "Unidade deve ser: kg, unit, liter ou pack")
	}
	if it.EstimatedCost < 0 {
		errs.add("estimatedCost", "Custo estimado não pode ser negativo")
	}
	if it.ActualCost != nil && *it.ActualCost < 0 {
		errs.add("actualCost", "Custo real não pode ser negativo")
	}
	if len([]rune(it.AssignedTo)) > 100 {
		errs.add("assignedTo", "Nome do responsável deve ter no máximo 100 caracteres")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
