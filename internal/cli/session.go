package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/service/admin"
	"github.com/Domenick1991/aeronavigator/internal/service/booking"
	"github.com/Domenick1991/aeronavigator/internal/service/flights"
	"github.com/Domenick1991/aeronavigator/internal/service/identity"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
)

const displayLayout = "2006-01-02 15:04"

// PasswordReader prints prompt and reads a password, ideally without echo.
type PasswordReader func(prompt string) (string, error)

type Services struct {
	Identity identity.IdentityUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Admin    admin.AdminUseCase
}

// Session is one interactive user session. It is not safe for concurrent use.
type Session struct {
	in           *bufio.Reader
	out          io.Writer
	readPassword PasswordReader
	svc          Services
	log          logger.Logger
	location     *time.Location
	upcoming     int

	user *domain.User
}

type Option func(*Session)

func WithPasswordReader(r PasswordReader) Option {
	return func(s *Session) {
		if r != nil {
			s.readPassword = r
		}
	}
}

// WithLocation sets the timezone departure times are shown in.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithUpcomingLimit(limit int) Option {
	return func(s *Session) {
		s.upcoming = limit
	}
}

func NewSession(in io.Reader, out io.Writer, svc Services, log logger.Logger, opts ...Option) *Session {
	s := &Session{
		in:       bufio.NewReader(in),
		out:      out,
		svc:      svc,
		log:      log,
		location: time.UTC,
	}
	s.readPassword = s.prompt
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drives the menus until the user exits, input ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			exit bool
			err  error
		)
		if s.user == nil {
			exit, err = s.guestMenu(ctx)
		} else {
			exit, err = s.userMenu(ctx)
		}
		if errors.Is(err, io.EOF) {
			s.println("\nGoodbye.")
			return nil
		}
		if err != nil {
			return err
		}
		if exit {
			s.println("Goodbye.")
			return nil
		}
	}
}

func (s *Session) guestMenu(ctx context.Context) (bool, error) {
	s.println("\n==== AeroNavigator ====")
	s.println("1. Register")
	s.println("2. Login")
	s.println("0. Exit")
	choice, err := s.prompt("Choice: ")
	if err != nil {
		return false, err
	}

	switch choice {
	case "1":
		return false, s.register(ctx)
	case "2":
		return false, s.login(ctx)
	case "0":
		return true, nil
	default:
		s.println("Invalid choice.")
		return false, nil
	}
}

func (s *Session) userMenu(ctx context.Context) (bool, error) {
	s.printf("\n==== Menu (Logged in as %s) ====\n", s.user.Name)
	s.println("1. View Flights")
	s.println("2. Search Flights")
	s.println("3. Book Flight")
	s.println("4. My Bookings")
	if s.user.IsAdmin {
		s.println("5. Add Flight (Admin)")
	}
	s.println("6. Logout")
	s.println("0. Exit")
	choice, err := s.prompt("Choice: ")
	if err != nil {
		return false, err
	}

	switch choice {
	case "1":
		return false, s.viewFlights(ctx)
	case "2":
		return false, s.searchFlights(ctx)
	case "3":
		return false, s.bookFlight(ctx)
	case "4":
		return false, s.myBookings(ctx)
	case "5":
		if !s.user.IsAdmin {
			s.println("Invalid choice.")
			return false, nil
		}
		return false, s.addFlight(ctx)
	case "6":
		s.log.Info("user logged out", "user_id", s.user.ID)
		s.user = nil
		s.println("Logged out.")
		return false, nil
	case "0":
		return true, nil
	default:
		s.println("Invalid choice.")
		return false, nil
	}
}

func (s *Session) register(ctx context.Context) error {
	s.println("\n--- Register ---")
	name, err := s.prompt("Name: ")
	if err != nil {
		return err
	}
	email, err := s.prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		return err
	}

	if _, err := s.svc.Identity.Register(ctx, identity.RegisterInput{Name: name, Email: email, Password: password}); err != nil {
		s.fail(err)
		return nil
	}
	s.println("Registered successfully! You can now log in.")
	return nil
}

func (s *Session) login(ctx context.Context) error {
	s.println("\n--- Login ---")
	email, err := s.prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := s.svc.Identity.Login(ctx, email, password)
	if err != nil {
		s.fail(err)
		return nil
	}
	s.user = user
	s.log.Info("user logged in", "user_id", user.ID)
	s.printf("Welcome %s!\n", user.Name)
	return nil
}

func (s *Session) viewFlights(ctx context.Context) error {
	list, err := s.svc.Flights.ListUpcoming(ctx, s.upcoming)
	if err != nil {
		s.fail(err)
		return nil
	}
	if len(list) == 0 {
		s.println("No flights found.")
		return nil
	}
	s.println("\n--- Flights ---")
	s.printFlights(list)
	return nil
}

func (s *Session) searchFlights(ctx context.Context) error {
	from, err := s.prompt("From: ")
	if err != nil {
		return err
	}
	to, err := s.prompt("To: ")
	if err != nil {
		return err
	}
	date, err := s.prompt("Date (YYYY-MM-DD, optional): ")
	if err != nil {
		return err
	}

	result, err := s.svc.Flights.Search(ctx, flights.SearchInput{Origin: from, Destination: to, Date: date})
	if err != nil {
		s.fail(err)
		return nil
	}
	if result.Warning != "" {
		s.printf("Warning: %s\n", result.Warning)
	}
	if len(result.Flights) == 0 {
		s.println("No matching flights.")
		return nil
	}
	s.println("\n--- Search Results ---")
	s.printFlights(result.Flights)
	return nil
}

func (s *Session) bookFlight(ctx context.Context) error {
	flightID, ok, err := s.promptInt("Enter flight ID to book: ")
	if err != nil || !ok {
		return err
	}
	seats, ok, err := s.promptInt("Seats: ")
	if err != nil || !ok {
		return err
	}

	reservation, err := s.svc.Bookings.Book(ctx, booking.BookInput{
		UserID:   s.user.ID,
		Email:    s.user.Email,
		FlightID: int64(flightID),
		Seats:    seats,
	})
	if err != nil {
		s.fail(err)
		return nil
	}
	s.printf("Booking successful! Booking #%d, %d seat(s), total %s\n",
		reservation.ID, reservation.Seats, domain.FormatPrice(reservation.TotalCostCents()))
	return nil
}

func (s *Session) myBookings(ctx context.Context) error {
	list, err := s.svc.Bookings.ListForUser(ctx, s.user.ID)
	if err != nil {
		s.fail(err)
		return nil
	}
	if len(list) == 0 {
		s.println("No bookings yet.")
		return nil
	}
	s.println("\n--- My Bookings ---")
	for _, b := range list {
		s.printf("%d: %s %s -> %s at %s | %d seats | Total %s\n",
			b.ID, b.FlightNumber, b.Origin, b.Destination,
			b.DepartureTime.In(s.location).Format(displayLayout),
			b.Seats, domain.FormatPrice(b.TotalCostCents()))
	}
	return nil
}

func (s *Session) addFlight(ctx context.Context) error {
	s.println("\n--- Add Flight ---")
	number, err := s.prompt("Flight number: ")
	if err != nil {
		return err
	}
	origin, err := s.prompt("Origin: ")
	if err != nil {
		return err
	}
	destination, err := s.prompt("Destination: ")
	if err != nil {
		return err
	}
	departure, err := s.prompt("Departure (YYYY-MM-DD HH:MM): ")
	if err != nil {
		return err
	}
	seats, ok, err := s.promptInt("Seats: ")
	if err != nil || !ok {
		return err
	}
	rawPrice, err := s.prompt("Price: ")
	if err != nil {
		return err
	}
	price, err := domain.ParsePrice(rawPrice)
	if err != nil {
		s.fail(err)
		return nil
	}

	flight, err := s.svc.Admin.AddFlight(ctx, s.user, admin.AddFlightInput{
		FlightNumber:  number,
		Origin:        origin,
		Destination:   destination,
		DepartureTime: departure,
		Seats:         seats,
		PriceCents:    price,
	})
	if err != nil {
		s.fail(err)
		return nil
	}
	s.printf("Flight added with ID %d.\n", flight.ID)
	return nil
}

func (s *Session) printFlights(list []domain.Flight) {
	for _, f := range list {
		s.printf("%d: %s %s -> %s at %s | Seats %d | Price %s\n",
			f.ID, f.FlightNumber, f.Origin, f.Destination,
			f.DepartureTime.In(s.location).Format(displayLayout),
			f.SeatsAvailable, domain.FormatPrice(f.PriceCents))
	}
}

// fail prints a message for err. Unexpected errors are logged as well.
func (s *Session) fail(err error) {
	msg, known := userMessage(err)
	if !known {
		s.log.Error("operation failed", "error", err)
	}
	s.println(msg)
}

func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "Email already registered.", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid credentials.", true
	case errors.Is(err, domain.ErrFlightNotFound):
		return "Flight not found.", true
	case errors.Is(err, domain.ErrInsufficientSeats):
		return "Not enough seats available.", true
	case errors.Is(err, domain.ErrInvalidSeats):
		return "Seats must be a positive number.", true
	case errors.Is(err, domain.ErrInvalidDateTime):
		return "Invalid datetime format, expected YYYY-MM-DD HH:MM.", true
	case errors.Is(err, domain.ErrInvalidPrice):
		return "Invalid price, expected an amount like 199.99.", true
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Sprintf("Invalid input: %v", err), true
	case errors.Is(err, domain.ErrForbidden):
		return "Only administrators can do that.", true
	case errors.Is(err, domain.ErrConnectionFailure):
		return "Database is unavailable, please try again later.", true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Operation cancelled.", true
	default:
		return "Something went wrong, please try again.", false
	}
}

// prompt returns the trimmed next line. A final line without a newline is
// returned before io.EOF.
func (s *Session) prompt(label string) (string, error) {
	s.printf("%s", label)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptInt reports ok=false after telling the user the value was not a number.
func (s *Session) promptInt(label string) (int, bool, error) {
	raw, err := s.prompt(label)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.println("Please enter a whole number.")
		return 0, false, nil
	}
	return n, true, nil
}

func (s *Session) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *Session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
