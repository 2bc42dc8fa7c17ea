package service

import (
	"fmt"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/utils"
)

const emailSignature = "\n\nBest regards,\nThe KarHubty Team"

func newEvent(t domain.EventType, nt domain.NotificationType, to domain.Recipient, title, message string) domain.Event {
	return domain.Event{
		Type:             t,
		Recipient:        to,
		NotificationType: nt,
		Title:            title,
		Message:          message,
	}
}

func withEntity(evt domain.Event, entityType string, id int64) domain.Event {
	evt.RelatedEntityType = entityType
	evt.RelatedEntityID = id
	return evt
}

func withEmail(evt domain.Event, to, subject, body string) domain.Event {
	if to == "" {
		return evt
	}
	evt.Email = &domain.EmailMessage{To: to, Subject: subject, Body: body + emailSignature}
	return evt
}

func carLabel(car *domain.Car) string {
	if car == nil {
		return "the car"
	}
	return fmt.Sprintf("%s %s", car.Brand, car.Model)
}

func rentalPeriod(r *domain.Rental) string {
	return fmt.Sprintf("%s to %s", utils.FormatDate(r.StartDate), utils.FormatDate(r.EndDate))
}
