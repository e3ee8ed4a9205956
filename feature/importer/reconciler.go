package importer

import (
	"context"
	"errors"
	"strings"
	"time"

	"ixp-tracker/core/metrics"
	"ixp-tracker/core/utils"
	"ixp-tracker/feature/country"
	"ixp-tracker/feature/lookup"
	"ixp-tracker/feature/registry"
	"ixp-tracker/feature/tracker/models"
	"ixp-tracker/feature/tracker/store"

	"go.uber.org/zap"
)

// Departure reasons used in logs and metrics.
const (
	ReasonInactivity     = models.EndReasonInactivity
	ReasonDeregistration = models.EndReasonDeregistration
)

// Reconciler applies raw registry records to the store.
// Invalid records are logged and skipped; only store failures outside a
// single record and context cancellation are returned.
type Reconciler struct {
	store   *store.Store
	lookups lookup.Sources
	logger  *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(st *store.Store, lookups lookup.Sources, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: st, lookups: lookups, logger: logger}
}

func (r *Reconciler) skip(entity string, msg string, fields ...zap.Field) {
	metrics.RecordsProcessed.WithLabelValues(entity, metrics.ResultSkipped).Inc()
	r.logger.Warn(msg, fields...)
}

func imported(entity string) {
	metrics.RecordsProcessed.WithLabelValues(entity, metrics.ResultImported).Inc()
}

// ReconcileExchanges upserts exchanges. Records with a country outside ISO 3166 are skipped.
func (r *Reconciler) ReconcileExchanges(ctx context.Context, processing time.Time, records []registry.Record) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := rec.Int("id")
		if err != nil {
			r.skip(registry.EndpointIX, "Cannot import IXP data", zap.Error(err))
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(rec.String("country")))
		if !country.IsValid(code) {
			r.skip(registry.EndpointIX, "Skipping IXP import as country code not found",
				zap.String("country", code), zap.Int("id", id))
			continue
		}
		created, err := rec.Time("created")
		if err != nil {
			r.skip(registry.EndpointIX, "Cannot import IXP data", zap.Int("id", id), zap.Error(err))
			continue
		}
		updated, err := rec.Time("updated")
		if err != nil {
			r.skip(registry.EndpointIX, "Cannot import IXP data", zap.Int("id", id), zap.Error(err))
			continue
		}

		seen := processing
		ex := &models.Exchange{
			PeeringDBID: id,
			Name:        rec.String("name"),
			LongName:    rec.String("name_long"),
			City:        rec.String("city"),
			Website:     rec.String("website"),
			Active:      true,
			CountryCode: code,
			Created:     created,
			LastUpdated: updated,
			LastActive:  &seen,
		}
		if err := r.store.UpsertExchange(ctx, ex); err != nil {
			r.skip(registry.EndpointIX, "Cannot import IXP data", zap.Int("id", id), zap.Error(err))
			continue
		}
		imported(registry.EndpointIX)
		r.logger.Debug("Imported IXP record", zap.Int("id", id))
	}
	return nil
}

// ReconcileNetworks upserts networks, resolving country and RPKI data as of
// each record's update time.
func (r *Reconciler) ReconcileNetworks(ctx context.Context, records []registry.Record) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.network(ctx, rec)
		if err != nil {
			r.skip(registry.EndpointNet, "Cannot import ASN data", zap.Any("id", rec["id"]), zap.Any("asn", rec["asn"]), zap.Error(err))
			continue
		}
		if err := r.store.UpsertNetwork(ctx, n); err != nil {
			r.skip(registry.EndpointNet, "Cannot import ASN data", zap.Int("asn", n.Number), zap.Error(err))
			continue
		}
		imported(registry.EndpointNet)
	}
	return nil
}

func (r *Reconciler) network(ctx context.Context, rec registry.Record) (*models.Network, error) {
	id, err := rec.Int("id")
	if err != nil {
		return nil, err
	}
	asn, err := rec.Int("asn")
	if err != nil {
		return nil, err
	}
	created, err := rec.Time("created")
	if err != nil {
		return nil, err
	}
	updated, err := rec.Time("updated")
	if err != nil {
		return nil, err
	}

	code, err := r.lookups.Geo.CountryOf(ctx, asn, updated)
	if err != nil {
		return nil, err
	}
	code = strings.ToUpper(code)
	if code != country.Unknown && !country.IsValid(code) {
		r.logger.Warn("Geo lookup returned unknown country", zap.Int("asn", asn), zap.String("country", code))
		code = country.Unknown
	}
	rpki, err := r.lookups.RPKI.RPKISummaryOf(ctx, asn, updated)
	if err != nil {
		return nil, err
	}

	return &models.Network{
		PeeringDBID:             id,
		Number:                  asn,
		Name:                    rec.String("name"),
		NetworkType:             models.NetworkType(rec.String("info_type")),
		RegistrationCountryCode: code,
		RPKI:                    models.NewRPKI(rpki),
		Created:                 created,
		LastUpdated:             updated,
	}, nil
}

// ReconcileMemberships attaches every record and then runs departure inference once.
func (r *Reconciler) ReconcileMemberships(ctx context.Context, processing time.Time, records []registry.Record) error {
	if err := r.AttachMemberships(ctx, processing, records); err != nil {
		return err
	}
	return r.InferDepartures(ctx, processing)
}

// AttachMemberships upserts memberships and their open periods. Exchange and
// network must already be reconciled; records referencing unknown ones are skipped.
func (r *Reconciler) AttachMemberships(ctx context.Context, processing time.Time, records []registry.Record) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields := []zap.Field{zap.Any("asn", rec["asn"]), zap.Any("ixp", rec["ix_id"])}

		ex, n, err := r.parties(ctx, rec)
		if err != nil {
			r.skip(registry.EndpointNetIXLan, "Cannot attach member", append(fields, zap.Error(err))...)
			continue
		}
		a, err := attachment(rec, processing)
		if err != nil {
			r.skip(registry.EndpointNetIXLan, "Cannot attach member", append(fields, zap.Error(err))...)
			continue
		}
		a.ExchangeID, a.NetworkID = ex.ID, n.ID

		res, err := r.store.Attach(ctx, a)
		if err != nil {
			r.skip(registry.EndpointNetIXLan, "Cannot attach member", append(fields, zap.Error(err))...)
			continue
		}
		imported(registry.EndpointNetIXLan)
		if res.Opened {
			r.logger.Debug("Opened membership period", append(fields, zap.Time("start", res.Period.StartDate))...)
		}
	}
	return nil
}

func (r *Reconciler) parties(ctx context.Context, rec registry.Record) (*models.Exchange, *models.Network, error) {
	ixID, err := rec.Int("ix_id")
	if err != nil {
		return nil, nil, err
	}
	ex, err := r.store.ExchangeByPeeringDBID(ctx, ixID)
	if err != nil {
		return nil, nil, err
	}

	if netID, err := rec.Int("net_id"); err == nil {
		n, err := r.store.NetworkByPeeringDBID(ctx, netID)
		if err == nil {
			return ex, n, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, nil, err
		}
	}
	asn, err := rec.Int("asn")
	if err != nil {
		return nil, nil, err
	}
	n, err := r.store.NetworkByNumber(ctx, asn)
	if err != nil {
		return nil, nil, err
	}
	return ex, n, nil
}

func attachment(rec registry.Record, processing time.Time) (store.Attachment, error) {
	created, err := rec.Time("created")
	if err != nil {
		return store.Attachment{}, err
	}
	updated, err := rec.Time("updated")
	if err != nil {
		return store.Attachment{}, err
	}
	speed := 0
	if v, ok := rec["speed"]; ok && v != nil {
		if speed, err = rec.Int("speed"); err != nil {
			return store.Attachment{}, err
		}
	}
	return store.Attachment{
		Joined:      utils.Day(created),
		LastUpdated: updated,
		Seen:        processing,
		Speed:       speed,
		IsRSPeer:    rec.Bool("is_rs_peer"),
	}, nil
}

// InferDepartures closes the open period of every active membership that has left.
//
// A membership not seen since before the processing month ends on the last day
// of the month it was last seen. A membership whose network has the unknown
// country and is no longer assigned ends on the last day of the month before
// it was last seen. Inactivity is checked first; a period it closes is not
// re-checked for deregistration.
func (r *Reconciler) InferDepartures(ctx context.Context, processing time.Time) error {
	active, err := r.store.ActiveMemberships(ctx)
	if err != nil {
		return err
	}
	monthStart := utils.StartOfMonth(processing)

	var candidates []models.Membership
	for _, m := range active {
		if m.LastActive.Before(monthStart) {
			if err := r.depart(ctx, m, utils.EndOfMonth(m.LastActive), ReasonInactivity); err != nil {
				return err
			}
			continue
		}
		candidates = append(candidates, m)
	}

	for _, m := range candidates {
		if m.Network.RegistrationCountryCode != country.Unknown {
			continue
		}
		status, err := r.lookups.Geo.StatusOf(ctx, m.Network.Number, processing)
		if err != nil {
			r.logger.Warn("Cannot check ASN status", zap.Int("asn", m.Network.Number), zap.Error(err))
			continue
		}
		if status == lookup.StatusAssigned {
			continue
		}
		if err := r.depart(ctx, m, utils.EndOfPreviousMonth(m.LastActive), ReasonDeregistration); err != nil {
			return err
		}
	}
	r.logger.Info("Fixing members finished", zap.Int("active", len(active)))
	return nil
}

func (r *Reconciler) depart(ctx context.Context, m models.Membership, end time.Time, reason string) error {
	open := m.OpenPeriod()
	if open == nil {
		return nil
	}
	if end.Before(utils.Day(open.StartDate)) {
		end = utils.Day(open.StartDate)
	}
	closed, err := r.store.ClosePeriod(ctx, open.ID, end, reason)
	if err != nil {
		return err
	}
	if closed {
		metrics.Departures.WithLabelValues(reason).Inc()
		r.logger.Debug("Member flagged as left",
			zap.String("reason", reason),
			zap.Int("member", m.Network.Number),
			zap.Uint("exchange", m.ExchangeID),
			zap.Time("end", end))
	}
	return nil
}
