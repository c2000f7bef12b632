package notify

// Bodies for the booking emails. Data is a BookingEmail.
const (
	SubjectBookingCreated   = "Please confirm your booking"
	SubjectBookingConfirmed = "Your booking is confirmed"
	SubjectBookingCancelled = "Your booking was cancelled"

	BookingCreatedTemplate = `Hello {{.GuestName}},

We received your booking {{.BookingID}} from {{.CheckIn}} to {{.CheckOut}}.
{{range .Rooms}}- {{.Quantity}} x {{.Name}} at {{printf "%.2f" .Price}}
{{end}}Total: {{printf "%.2f" .FinalPrice}}

Confirm it here: {{.ConfirmURL}}
`

	BookingConfirmedTemplate = `Hello {{.GuestName}},

Booking {{.BookingID}} from {{.CheckIn}} to {{.CheckOut}} is confirmed.
`

	BookingCancelledTemplate = `Hello {{.GuestName}},

Booking {{.BookingID}} from {{.CheckIn}} to {{.CheckOut}} has been cancelled.
`
)

type BookingEmailRoom struct {
	Name     string
	Quantity int
	Price    float64
}

type BookingEmail struct {
	BookingID  string
	GuestName  string
	CheckIn    string
	CheckOut   string
	Rooms      []BookingEmailRoom
	FinalPrice float64
	ConfirmURL string
}
