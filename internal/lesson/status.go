package lesson

// StatusKind enumerates the booking states the platform reports for the
// logged-in customer on a lesson.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusReserved
	StatusCancelledByCustomer
	StatusOther
)

const (
	rawReserved            = "Gereserveerd"
	rawCancelledByCustomer = "Afgemeld_door_klant"
)

func (k StatusKind) String() string {
	switch k {
	case StatusNone:
		return "none"
	case StatusReserved:
		return "reserved"
	case StatusCancelledByCustomer:
		return "cancelled_by_customer"
	default:
		return "other"
	}
}

type BookingStatus struct {
	kind StatusKind
	raw  string
}

func ParseBookingStatus(raw string) BookingStatus {
	switch raw {
	case "":
		return BookingStatus{kind: StatusNone}
	case rawReserved:
		return BookingStatus{kind: StatusReserved, raw: raw}
	case rawCancelledByCustomer:
		return BookingStatus{kind: StatusCancelledByCustomer, raw: raw}
	default:
		return BookingStatus{kind: StatusOther, raw: raw}
	}
}

func (s BookingStatus) Kind() StatusKind { return s.kind }
func (s BookingStatus) Raw() string      { return s.raw }
func (s BookingStatus) IsSet() bool      { return s.kind != StatusNone }
