package tutor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

const (
	PhotoBucket   = "tutor-photos"
	MaxPhotoBytes = 5 << 20

	entityName = "tutor"
)

var (
	// errors
	ErrNotFound = errors.New("tutor not found")

	photoExtensions = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
)

// Photo is an uploaded profile picture.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (p Photo) Validate() error {
	if _, ok := photoExtensions[p.ContentType]; !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "photo", Error: "only JPEG, PNG or WEBP images are allowed"})
	}
	if p.Size > MaxPhotoBytes {
		return core.NewValidationError(nil, core.FieldError{Field: "photo", Error: "image must be 5MB or smaller"})
	}
	return nil
}

func (p Photo) objectName() string {
	return fmt.Sprintf("tutor_%s%s", uuid.New().String(), photoExtensions[p.ContentType])
}

type (
	Repository interface {
		CreateTutor(ctx context.Context, t Tutor) (Tutor, error)
		// QueryTutors applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Tutor.Name or Tutor.Qualification.
		QueryTutors(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Tutor, error)
		GetTutorByID(ctx context.Context, id int) (Tutor, error)
		UpdateTutor(ctx context.Context, t Tutor) (Tutor, error)
		SetTutorArchived(ctx context.Context, id int, archived bool, updatedAt time.Time) (Tutor, error)
		DeleteTutor(ctx context.Context, id int) error
		CountTutors(ctx context.Context, filter QueryFilter) (int, error)
	}

	Service struct {
		repo   Repository
		store  core.FileStorage
		events core.EventPublisher
		logger core.Logger
	}
)

func NewService(repo Repository, store core.FileStorage, events core.EventPublisher, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(store, "store"),
		vala.IsNotNil(events, "events"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{repo: repo, store: store, events: events, logger: logger}
}

func (svc *Service) uploadPhoto(ctx context.Context, photo *Photo) (string, error) {
	if err := photo.Validate(); err != nil {
		return "", err
	}
	url, err := svc.store.Upload(ctx, PhotoBucket, photo.objectName(), photo.Body, photo.ContentType)
	if err != nil {
		return "", errors.Wrap(err, "uploading photo")
	}
	return url, nil
}

// removePhoto only logs failures.
func (svc *Service) removePhoto(ctx context.Context, url string) {
	if url == "" {
		return
	}
	name, ok := svc.store.ObjectName(PhotoBucket, url)
	if !ok {
		return
	}
	if err := svc.store.Remove(ctx, PhotoBucket, name); err != nil {
		svc.logger.Warn("removing tutor photo", errors.Wrap(err, "removing "+name))
	}
}

// Create saves a new Tutor. The photo, if any, is uploaded first.
func (svc *Service) Create(ctx context.Context, nt NewTutor, photo *Photo) (Tutor, error) {
	now := time.Now().UTC()
	t := Tutor{
		Name:          nt.Name,
		Qualification: nt.Qualification,
		Bio:           nt.Bio,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if photo != nil {
		url, err := svc.uploadPhoto(ctx, photo)
		if err != nil {
			return Tutor{}, err
		}
		t.ProfilePicture = url
	}

	created, err := svc.repo.CreateTutor(ctx, t)
	if err != nil {
		svc.removePhoto(ctx, t.ProfilePicture)
		return Tutor{}, errors.Wrap(err, "creating tutor")
	}
	t = created
	svc.events.Publish(ctx, core.NewEvent(ctx, entityName, core.ActionCreated, t.ID, t))
	return t, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Tutor, error) {
	filter.Clean()
	return svc.repo.QueryTutors(ctx, filter, ordering...)
}

// QueryActive lists the tutors shown on the public site.
func (svc *Service) QueryActive(ctx context.Context) ([]Tutor, error) {
	return svc.repo.QueryTutors(ctx, QueryFilter{Status: core.StatusActive}, core.DBOrdering{Field: "name", Ascending: true})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Tutor, error) {
	return svc.repo.GetTutorByID(ctx, id)
}

// Update modifies a Tutor. A new photo replaces the old one, which is removed once the new one is stored.
func (svc *Service) Update(ctx context.Context, id int, ut UpdateTutor, photo *Photo) (Tutor, error) {
	orig, err := svc.repo.GetTutorByID(ctx, id)
	if err != nil {
		return Tutor{}, err
	}

	t := orig
	t.Name = ut.Name
	if ut.Qualification != nil {
		t.Qualification = *ut.Qualification
	}
	if ut.Bio != nil {
		t.Bio = *ut.Bio
	}
	t.UpdatedAt = time.Now().UTC()

	if photo != nil {
		url, err := svc.uploadPhoto(ctx, photo)
		if err != nil {
			return Tutor{}, err
		}
		t.ProfilePicture = url
	}

	updated, err := svc.repo.UpdateTutor(ctx, t)
	if err != nil {
		if photo != nil {
			svc.removePhoto(ctx, t.ProfilePicture)
		}
		return Tutor{}, errors.Wrap(err, "updating tutor")
	}
	t = updated
	if photo != nil && orig.ProfilePicture != t.ProfilePicture {
		svc.removePhoto(ctx, orig.ProfilePicture)
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, entityName, core.ActionUpdated, t.ID, t))
	return t, nil
}

func (svc *Service) Archive(ctx context.Context, id int) (Tutor, error) {
	return svc.setArchived(ctx, id, true)
}

func (svc *Service) Unarchive(ctx context.Context, id int) (Tutor, error) {
	return svc.setArchived(ctx, id, false)
}

func (svc *Service) setArchived(ctx context.Context, id int, archived bool) (Tutor, error) {
	t, err := svc.repo.SetTutorArchived(ctx, id, archived, time.Now().UTC())
	if err != nil {
		return Tutor{}, err
	}
	action := core.ActionArchived
	if !archived {
		action = core.ActionUnarchived
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, entityName, action, t.ID, nil))
	return t, nil
}

// Delete removes a Tutor and its photo.
func (svc *Service) Delete(ctx context.Context, id int) error {
	t, err := svc.repo.GetTutorByID(ctx, id)
	if err != nil {
		return err
	}
	svc.removePhoto(ctx, t.ProfilePicture)
	if err := svc.repo.DeleteTutor(ctx, id); err != nil {
		return errors.Wrap(err, "deleting tutor")
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, entityName, core.ActionDeleted, id, nil))
	return nil
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	filter.Clean()
	return svc.repo.CountTutors(ctx, filter)
}

// Recent returns the `n` most recently created tutors.
func (svc *Service) Recent(ctx context.Context, n int) ([]Tutor, error) {
	filter := QueryFilter{Status: core.StatusAll, Limit: n}
	return svc.repo.QueryTutors(ctx, filter, core.DBOrdering{Field: "created_at"}, core.DBOrdering{Field: "id"})
}
