package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db"
	"github.com/def-himani/mediflow/pkg/pagination"
)

const MsgNotFound = "Activity log not found"

var ownLog = auth.PatientOwned(func(l *Log) int64 { return l.PatientID }, MsgNotFound)

type Service struct {
	repo  Repository
	tx    db.Transactor
	links auth.LinkChecker
}

func NewService(repo Repository, tx db.Transactor, links auth.LinkChecker) *Service {
	return &Service{repo: repo, tx: tx, links: links}
}

// Create records a new log for the calling patient. The date is required.
func (s *Service) Create(ctx context.Context, id auth.Identity, req *Request) (*Log, error) {
	return s.create(ctx, id.SubjectID, req)
}

// CreateForPatient records a new log on behalf of a linked patient.
func (s *Service) CreateForPatient(ctx context.Context, id auth.Identity, patientID int64, req *Request) (*Log, error) {
	if err := auth.RequirePatientLink(ctx, s.links, id, patientID); err != nil {
		return nil, err
	}
	return s.create(ctx, patientID, req)
}

func (s *Service) create(ctx context.Context, patientID int64, req *Request) (*Log, error) {
	p, err := req.patch()
	if err != nil {
		return nil, err
	}
	if p.date == nil {
		return nil, apperr.Validation("Missing fields: date")
	}

	l := &Log{PatientID: patientID}
	p.apply(l)
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, apperr.Storage("create activity log", err)
	}
	return l, nil
}

// List pages through the calling patient's own logs.
func (s *Service) List(ctx context.Context, id auth.Identity, p pagination.Params) ([]Log, pagination.Page, error) {
	out, total, err := s.repo.ListForPatient(ctx, id.SubjectID, p.Limit, p.Offset)
	if err != nil {
		return nil, pagination.Page{}, apperr.Storage("list activity logs", err)
	}
	return out, p.Page(total), nil
}

// Get returns one of the calling patient's logs. Logs of other patients are
// reported as not found.
func (s *Service) Get(ctx context.Context, id auth.Identity, logID int64) (*Log, error) {
	l, err := s.load(ctx, logID, s.repo.Get)
	if err != nil {
		return nil, err
	}
	if err := ownLog.Allow(id, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update applies a partial edit to one of the calling patient's logs.
func (s *Service) Update(ctx context.Context, id auth.Identity, logID int64, req *Request) (*Log, error) {
	return s.update(ctx, logID, req, func(l *Log) error { return ownLog.Allow(id, l) })
}

// UpdateForPatient edits a linked patient's log for a physician. A log that
// belongs to a different patient is reported as not found.
func (s *Service) UpdateForPatient(ctx context.Context, id auth.Identity, patientID, logID int64, req *Request) (*Log, error) {
	if err := auth.RequirePatientLink(ctx, s.links, id, patientID); err != nil {
		return nil, err
	}
	return s.update(ctx, logID, req, func(l *Log) error {
		if l.PatientID != patientID {
			return apperr.NotFound(MsgNotFound)
		}
		return nil
	})
}

func (s *Service) update(ctx context.Context, logID int64, req *Request, allow func(*Log) error) (*Log, error) {
	p, err := req.patch()
	if err != nil {
		return nil, err
	}
	if p.empty() {
		return nil, apperr.Validation("No fields to update")
	}

	var out *Log
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := s.load(ctx, logID, s.repo.GetForUpdate)
		if err != nil {
			return err
		}
		if err := allow(l); err != nil {
			return err
		}
		p.apply(l)
		if err := s.repo.Update(ctx, l); err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperr.NotFound(MsgNotFound)
			}
			return apperr.Storage("update activity log", err)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, logID int64, get func(context.Context, int64) (*Log, error)) (*Log, error) {
	if logID <= 0 {
		return nil, apperr.NotFound(MsgNotFound)
	}
	l, err := get(ctx, logID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(MsgNotFound)
	}
	if err != nil {
		return nil, apperr.Storage("get activity log", err)
	}
	return l, nil
}

// PatientLogs lists a linked patient's logs for a physician.
func (s *Service) PatientLogs(ctx context.Context, id auth.Identity, patientID int64, p pagination.Params) ([]Log, pagination.Page, error) {
	if err := auth.RequirePatientLink(ctx, s.links, id, patientID); err != nil {
		return nil, pagination.Page{}, err
	}
	out, total, err := s.repo.ListForPatient(ctx, patientID, p.Limit, p.Offset)
	if err != nil {
		return nil, pagination.Page{}, apperr.Storage("list activity logs", err)
	}
	return out, p.Page(total), nil
}

// PatientLog returns one log of a linked patient for a physician. A log that
// belongs to a different patient is reported as not found.
func (s *Service) PatientLog(ctx context.Context, id auth.Identity, patientID, logID int64) (*Log, error) {
	if err := auth.RequirePatientLink(ctx, s.links, id, patientID); err != nil {
		return nil, err
	}
	l, err := s.load(ctx, logID, s.repo.Get)
	if err != nil {
		return nil, err
	}
	if l.PatientID != patientID {
		return nil, apperr.NotFound(MsgNotFound)
	}
	return l, nil
}

// LatestForPhysician returns the newest log among the physician's patients,
// or nil.
func (s *Service) LatestForPhysician(ctx context.Context, physicianID int64) (*Log, error) {
	l, err := s.repo.LatestForPhysician(ctx, physicianID)
	if err != nil {
		return nil, fmt.Errorf("latest activity log: %w", err)
	}
	return l, nil
}

// Export renders every log of the calling patient as an xlsx workbook.
func (s *Service) Export(ctx context.Context, id auth.Identity) ([]byte, error) {
	logs, _, err := s.repo.ListForPatient(ctx, id.SubjectID, 0, 0)
	if err != nil {
		return nil, apperr.Storage("export activity logs", err)
	}
	data, err := GenerateExport(logs)
	if err != nil {
		return nil, apperr.Storage("export activity logs", err)
	}
	return data, nil
}
