package persistence

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/repairticket"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/infrastructure/persistence/models"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
	"github.com/vinadepot/depot-sdk/pkg/mapping"
)

// documentRow and historyRow are the JSONB shapes. The domain structs stay
// free of serialization tags.
type documentRow struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type historyRow struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorRole string    `json:"actor_role"`
	ActorID   uuid.UUID `json:"actor_id"`
	Note      string    `json:"note,omitempty"`
}

func marshalDocuments(docs []servicerequest.DocumentMeta) ([]byte, error) {
	rows := make([]documentRow, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, documentRow{
			ID:         d.ID,
			Type:       string(d.Type),
			Name:       d.Name,
			UploadedBy: d.UploadedBy,
			UploadedAt: d.UploadedAt,
		})
	}
	return json.Marshal(rows)
}

func unmarshalDocuments(data []byte) ([]servicerequest.DocumentMeta, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []documentRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "failed to decode documents")
	}
	docs := make([]servicerequest.DocumentMeta, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, servicerequest.DocumentMeta{
			ID:         r.ID,
			Type:       servicerequest.DocType(r.Type),
			Name:       r.Name,
			UploadedBy: r.UploadedBy,
			UploadedAt: r.UploadedAt,
		})
	}
	return docs, nil
}

func marshalHistory(entries []servicerequest.HistoryEntry) ([]byte, error) {
	rows := make([]historyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, historyRow{
			Timestamp: e.Timestamp,
			From:      string(e.From),
			To:        string(e.To),
			ActorRole: string(e.ActorRole),
			ActorID:   e.ActorID,
			Note:      e.Note,
		})
	}
	return json.Marshal(rows)
}

func unmarshalHistory(data []byte) ([]servicerequest.HistoryEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []historyRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "failed to decode history")
	}
	entries := make([]servicerequest.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, servicerequest.HistoryEntry{
			Timestamp: r.Timestamp,
			From:      transition.Status(r.From),
			To:        transition.Status(r.To),
			ActorRole: permissions.Role(r.ActorRole),
			ActorID:   r.ActorID,
			Note:      r.Note,
		})
	}
	return entries, nil
}

func toDBServiceRequest(req *servicerequest.ServiceRequest) (*models.ServiceRequest, error) {
	docs, err := marshalDocuments(req.Documents())
	if err != nil {
		return nil, err
	}
	history, err := marshalHistory(req.History())
	if err != nil {
		return nil, err
	}
	return &models.ServiceRequest{
		ID:                req.ID().String(),
		Type:              string(req.Type()),
		ContainerNo:       req.ContainerNo(),
		Status:            string(req.Status()),
		ETA:               mapping.PointerToSQLNullTime(req.ETA()),
		LicensePlate:      mapping.ValueToSQLNullString(req.LicensePlate()),
		DriverName:        mapping.ValueToSQLNullString(req.DriverName()),
		YardSlot:          mapping.ValueToSQLNullString(req.YardSlot()),
		RejectedReason:    mapping.ValueToSQLNullString(req.RejectedReason()),
		DepotDeletedAt:    mapping.PointerToSQLNullTime(req.DepotDeletedAt()),
		CustomerDeletedAt: mapping.PointerToSQLNullTime(req.CustomerDeletedAt()),
		Documents:         docs,
		History:           history,
		Version:           req.Version(),
		CreatedAt:         req.CreatedAt(),
		UpdatedAt:         req.UpdatedAt(),
	}, nil
}

func toDomainServiceRequest(dbRow *models.ServiceRequest) (*servicerequest.ServiceRequest, error) {
	id, err := uuid.Parse(dbRow.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse service request id")
	}
	status, ok := transition.ParseStatus(dbRow.Status)
	if !ok {
		return nil, errors.Errorf("unknown service request status %q", dbRow.Status)
	}
	docs, err := unmarshalDocuments(dbRow.Documents)
	if err != nil {
		return nil, err
	}
	history, err := unmarshalHistory(dbRow.History)
	if err != nil {
		return nil, err
	}
	return servicerequest.Hydrate(
		id,
		servicerequest.RequestType(dbRow.Type),
		dbRow.ContainerNo,
		status,
		mapping.SQLNullTimeToPointer(dbRow.ETA),
		mapping.SQLNullStringToValue(dbRow.LicensePlate),
		mapping.SQLNullStringToValue(dbRow.DriverName),
		mapping.SQLNullStringToValue(dbRow.YardSlot),
		mapping.SQLNullStringToValue(dbRow.RejectedReason),
		mapping.SQLNullTimeToPointer(dbRow.DepotDeletedAt),
		mapping.SQLNullTimeToPointer(dbRow.CustomerDeletedAt),
		docs,
		history,
		dbRow.Version,
		dbRow.CreatedAt,
		dbRow.UpdatedAt,
	), nil
}

func toDBRepairTicket(t *repairticket.RepairTicket) *models.RepairTicket {
	return &models.RepairTicket{
		ID:             t.ID().String(),
		ContainerNo:    t.ContainerNo(),
		Status:         string(t.Status()),
		EstimatedCost:  t.EstimatedCost(),
		ManagerComment: mapping.ValueToSQLNullString(t.ManagerComment()),
		Version:        t.Version(),
		CreatedAt:      t.CreatedAt(),
		UpdatedAt:      t.UpdatedAt(),
	}
}

func toDomainRepairTicket(dbRow *models.RepairTicket) (*repairticket.RepairTicket, error) {
	id, err := uuid.Parse(dbRow.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse repair ticket id")
	}
	return repairticket.Hydrate(
		id,
		dbRow.ContainerNo,
		repairticket.Status(dbRow.Status),
		dbRow.EstimatedCost,
		mapping.SQLNullStringToValue(dbRow.ManagerComment),
		dbRow.Version,
		dbRow.CreatedAt,
		dbRow.UpdatedAt,
	), nil
}
