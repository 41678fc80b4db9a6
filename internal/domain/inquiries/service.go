package inquiries

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	createAttempts   = 3
)

type Service struct {
	store StoreAPI
	newID func() string
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, newID: uuid.NewString}
}

// Create stores a public contact request in pending status under a fresh
// eight-character transaction number.
func (s *Service) Create(ctx context.Context, in Input) (Inquiry, error) {
	in = trim(in)
	in.Status = StatusPending
	if err := validate(in); err != nil {
		return Inquiry{}, err
	}
	var created Inquiry
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		created, err = s.store.Create(ctx, Inquiry{
			TransactionNo: s.transactionNo(),
			FirstName:     in.FirstName,
			LastName:      in.LastName,
			ContactNo:     in.ContactNo,
			EmailAddress:  in.EmailAddress,
			Subject:       in.Subject,
			Message:       in.Message,
			Status:        in.Status,
		})
		if !errors.Is(err, ErrTransactionNoTaken) {
			break
		}
	}
	return created, err
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Inquiry, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []Inquiry{}
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, transactionNo string) (Inquiry, error) {
	transactionNo = strings.ToUpper(strings.TrimSpace(transactionNo))
	if transactionNo == "" {
		return Inquiry{}, ErrNotFound
	}
	return s.store.GetByTransactionNo(ctx, transactionNo)
}

// Update replaces the editable fields; an empty status keeps the current one.
func (s *Service) Update(ctx context.Context, transactionNo string, in Input) (Inquiry, error) {
	current, err := s.Get(ctx, transactionNo)
	if err != nil {
		return Inquiry{}, err
	}
	in = trim(in)
	if in.Status == "" {
		in.Status = current.Status
	}
	if err := validate(in); err != nil {
		return Inquiry{}, err
	}
	return s.store.Update(ctx, current.TransactionNo, in)
}

func (s *Service) transactionNo() string {
	id := strings.ReplaceAll(s.newID(), "-", "")
	return strings.ToUpper(id[:8])
}

func trim(in Input) Input {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.ContactNo = strings.TrimSpace(in.ContactNo)
	in.EmailAddress = strings.TrimSpace(in.EmailAddress)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	return in
}

func validate(in Input) error {
	var fields []FieldError
	required := func(field, value string) {
		if value == "" {
			fields = append(fields, FieldError{Field: field, Reason: "is required"})
		}
	}
	required("firstName", in.FirstName)
	required("lastName", in.LastName)
	required("emailAddress", in.EmailAddress)
	required("subject", in.Subject)
	required("message", in.Message)

	if in.EmailAddress != "" && !validEmail(in.EmailAddress) {
		fields = append(fields, FieldError{Field: "emailAddress", Reason: "must be a valid email address"})
	}
	if !validStatus(in.Status) {
		fields = append(fields, FieldError{Field: "status", Reason: "must be one of pending, in-progress, resolved"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	return strings.Contains(value[at+1:], ".")
}

func validStatus(status string) bool {
	for _, s := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}
