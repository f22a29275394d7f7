package incidents

import (
	"context"
	"time"

	"parkwise/internal/audit"
	"parkwise/internal/notifications"
	"parkwise/internal/parking"
	"parkwise/internal/reservations"
	"parkwise/internal/users"
	"parkwise/internal/waitlist"
	"parkwise/pkg/logger"

	"github.com/google/uuid"
)

// ReservationService is the slice of the reservations module this service
// depends on
type ReservationService interface {
	GetConfirmedForUserDate(ctx context.Context, userID uuid.UUID, date time.Time) (*reservations.Reservation, error)
	CreateFromIncident(ctx context.Context, userID, spotID uuid.UUID, date time.Time) (*reservations.Reservation, error)
	CancelNoRedistribute(ctx context.Context, reservationID uuid.UUID) error
	CancelReservation(ctx context.Context, userID, reservationID uuid.UUID) error
}

// SpotFinder locates alternate spots for displaced reporters
type SpotFinder interface {
	GetSpotGroup(ctx context.Context, spotID uuid.UUID) (uuid.UUID, error)
	FindAlternateSpot(ctx context.Context, preferredGroupID uuid.UUID, date time.Time, excludeSpotID uuid.UUID) (*parking.ParkingSpot, error)
}

// UserFinder resolves license plates to registered users
type UserFinder interface {
	FindByLicensePlate(ctx context.Context, plate string) (*users.User, error)
}

// ReportResult tells the reporter what happened to their parking for the day
type ReportResult struct {
	Incident       *Incident                 `json:"incident"`
	NewReservation *reservations.Reservation `json:"new_reservation,omitempty"`
}

// Service interface defines the contract for incident business logic
type Service interface {
	Report(ctx context.Context, reporterID uuid.UUID, date time.Time, licensePlate, photoURL string) (*ReportResult, error)
	Confirm(ctx context.Context, adminID, incidentID uuid.UUID) (*Incident, error)
	Dismiss(ctx context.Context, adminID, incidentID uuid.UUID) (*Incident, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*Incident, error)
	ListIncidents(ctx context.Context, status IncidentStatus, since time.Time) ([]Incident, error)
	ListMyIncidents(ctx context.Context, reporterID uuid.UUID) ([]Incident, error)
}

type service struct {
	repo         Repository
	reservations ReservationService
	spots        SpotFinder
	users        UserFinder
	notifier     notifications.Service
	auditor      audit.Service
	log          *logger.Logger
}

// NewService creates a new incident service
func NewService(repo Repository, reservationSvc ReservationService, spots SpotFinder, userFinder UserFinder, notifier notifications.Service, auditor audit.Service) Service {
	return &service{
		repo:         repo,
		reservations: reservationSvc,
		spots:        spots,
		users:        userFinder,
		notifier:     notifier,
		auditor:      auditor,
		log:          logger.GetDefault(),
	}
}

// Report handles a reserved spot found occupied on arrival. The reporter is
// moved to an alternate spot when one is free; the occupied spot itself is
// never offered to the waitlist because a vehicle is physically on it.
func (s *service) Report(ctx context.Context, reporterID uuid.UUID, date time.Time, licensePlate, photoURL string) (*ReportResult, error) {
	date = waitlist.NormalizeDate(date)

	reservation, err := s.reservations.GetConfirmedForUserDate(ctx, reporterID, date)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrNoReservation
	}

	incident := &Incident{
		ReporterID:      reporterID,
		SpotID:          reservation.SpotID,
		ReservationDate: date,
		LicensePlate:    licensePlate,
		PhotoURL:        photoURL,
		Status:          StatusReported,
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, err
	}
	s.log.LogIncidentReported(ctx, incident.ID.String(), incident.SpotID.String(), reporterID.String())
	s.auditor.Record(ctx, audit.Event(audit.ActionIncidentReported, reporterID, reporterID, incident.ID, "incident", audit.JSONMap{
		"spot_id":          incident.SpotID.String(),
		"reservation_date": date.Format(waitlist.DateLayout),
		"license_plate":    licensePlate,
	}))

	groupID, err := s.spots.GetSpotGroup(ctx, incident.SpotID)
	if err != nil {
		return nil, err
	}
	alternate, err := s.spots.FindAlternateSpot(ctx, groupID, date, incident.SpotID)
	if err != nil {
		return nil, err
	}

	result := &ReportResult{Incident: incident}
	if alternate == nil {
		incident.Status = StatusNoSpot
		if err := s.repo.Update(ctx, incident); err != nil {
			return nil, err
		}
		s.auditor.Record(ctx, audit.Event(audit.ActionIncidentNoSpot, reporterID, uuid.Nil, incident.ID, "incident", nil))
		s.notifier.Notify(ctx, notifications.TypeIncidentNoSpot, reporterID, map[string]interface{}{
			"incident_id":      incident.ID.String(),
			"reservation_date": date.Format(waitlist.DateLayout),
		})
		return result, nil
	}

	newReservation, err := s.reservations.CreateFromIncident(ctx, reporterID, alternate.ID, date)
	if err != nil {
		return nil, err
	}
	// The old reservation is released without redistribution; the spot is
	// occupied and cannot host anyone else today
	if err := s.reservations.CancelNoRedistribute(ctx, reservation.ID); err != nil {
		return nil, err
	}

	incident.Status = StatusReassigned
	incident.NewSpotID = &alternate.ID
	incident.NewReservationID = &newReservation.ID
	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event(audit.ActionIncidentReassigned, reporterID, uuid.Nil, incident.ID, "incident", audit.JSONMap{
		"old_spot_id":        incident.SpotID.String(),
		"new_spot_id":        alternate.ID.String(),
		"new_reservation_id": newReservation.ID.String(),
	}))
	s.notifier.Notify(ctx, notifications.TypeIncidentReassigned, reporterID, map[string]interface{}{
		"incident_id":      incident.ID.String(),
		"new_spot_id":      alternate.ID.String(),
		"reservation_date": date.Format(waitlist.DateLayout),
	})

	result.NewReservation = newReservation
	return result, nil
}

// Confirm records an admin upholding the report. The offending vehicle's
// owner, when registered, gets a warning; their own reservation for the date,
// now standing empty, is cancelled and its spot goes to the waitlist.
func (s *service) Confirm(ctx context.Context, adminID, incidentID uuid.UUID) (*Incident, error) {
	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.Status.IsTerminal() {
		return nil, ErrIncidentClosed
	}

	offender, err := s.users.FindByLicensePlate(ctx, incident.LicensePlate)
	if err != nil {
		return nil, err
	}
	if offender != nil {
		incident.OffenderID = &offender.ID
		s.notifier.Notify(ctx, notifications.TypeIncidentWarning, offender.ID, map[string]interface{}{
			"incident_id":      incident.ID.String(),
			"spot_id":          incident.SpotID.String(),
			"reservation_date": incident.ReservationDate.Format(waitlist.DateLayout),
		})

		offenderReservation, err := s.reservations.GetConfirmedForUserDate(ctx, offender.ID, incident.ReservationDate)
		if err != nil {
			return nil, err
		}
		// Only a reservation for a different spot is freed; if the offender
		// somehow holds the reported spot the report was mistaken
		if offenderReservation != nil && offenderReservation.SpotID != incident.SpotID {
			if err := s.reservations.CancelReservation(ctx, offender.ID, offenderReservation.ID); err != nil {
				s.log.ErrorWithContext(ctx, "failed to cancel offender reservation", err, map[string]interface{}{
					"incident_id":    incident.ID.String(),
					"reservation_id": offenderReservation.ID.String(),
				})
			}
		}
	}

	now := time.Now()
	incident.Status = StatusConfirmed
	incident.ResolvedAt = &now
	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event(audit.ActionIncidentConfirmed, incident.ReporterID, adminID, incident.ID, "incident", audit.JSONMap{
		"license_plate": incident.LicensePlate,
	}))
	return incident, nil
}

// Dismiss closes the report without action against anyone. Any reassignment
// already granted to the reporter stands.
func (s *service) Dismiss(ctx context.Context, adminID, incidentID uuid.UUID) (*Incident, error) {
	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.Status.IsTerminal() {
		return nil, ErrIncidentClosed
	}

	now := time.Now()
	incident.Status = StatusDismissed
	incident.ResolvedAt = &now
	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event(audit.ActionIncidentDismissed, incident.ReporterID, adminID, incident.ID, "incident", nil))
	return incident, nil
}

func (s *service) GetIncident(ctx context.Context, id uuid.UUID) (*Incident, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListIncidents(ctx context.Context, status IncidentStatus, since time.Time) ([]Incident, error) {
	return s.repo.List(ctx, status, since)
}

func (s *service) ListMyIncidents(ctx context.Context, reporterID uuid.UUID) ([]Incident, error) {
	return s.repo.ListByReporter(ctx, reporterID)
}
