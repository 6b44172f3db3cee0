package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/revel/internal/model"
)

// SpaceLoad is load_space's return value: a space's own row plus every
// live (non-deleted) element belonging to it, sub-rows attached, media
// bytes excluded (spec.md §4.1 — LoadMedia fetches those on demand).
type SpaceLoad struct {
	Space    *model.Space
	Elements []*model.Element
}

// LoadSpace returns a space and all non-deleted elements whose space_id
// matches, with their attached sub-rows, excluding media bytes.
func (s *Store) LoadSpace(spaceID string) (*SpaceLoad, error) {
	sp, err := s.loadSpaceRow(spaceID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT e.id, e.kind, e.shape_kind, e.rotation_degrees, e.hidden, e.locked, e.shape_opts_json,
		       p.x, p.y, p.z,
		       sz.w, sz.h,
		       c.r, c.g, c.b, c.a,
		       t.text,
		       m.kind, m.thumbnail, m.duration_seconds,
		       conn.from_element_id, conn.to_element_id, conn.from_point, conn.to_point,
		       d.points_json, d.stroke_width, d.color_r, d.color_g, d.color_b, d.color_a
		FROM elements e
		LEFT JOIN positions p ON p.element_id = e.id
		LEFT JOIN sizes sz ON sz.element_id = e.id
		LEFT JOIN colors c ON c.element_id = e.id
		LEFT JOIN texts t ON t.element_id = e.id
		LEFT JOIN media_blobs m ON m.element_id = e.id
		LEFT JOIN connections conn ON conn.element_id = e.id
		LEFT JOIN drawings d ON d.element_id = e.id
		WHERE e.space_id = ?`, spaceID)
	if err != nil {
		return nil, newErr(KindIO, "load_space", err)
	}
	defer rows.Close()

	var elements []*model.Element
	for rows.Next() {
		e, err := scanElement(rows, spaceID)
		if err != nil {
			return nil, newErr(KindSchema, "load_space scan", err)
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, newErr(KindIO, "load_space", err)
	}

	return &SpaceLoad{Space: sp, Elements: elements}, nil
}

func (s *Store) loadSpaceRow(spaceID string) (*model.Space, error) {
	var sp model.Space
	var parentID sql.NullString
	var createdUnix int64
	err := s.db.QueryRow(`
		SELECT id, name, parent_id, bg_r, bg_g, bg_b, bg_a, show_grid, grid_r, grid_g, grid_b, grid_a, created_at
		FROM spaces WHERE id = ?`, spaceID,
	).Scan(&sp.ID, &sp.Name, &parentID,
		&sp.BackgroundColor.R, &sp.BackgroundColor.G, &sp.BackgroundColor.B, &sp.BackgroundColor.A,
		&sp.ShowGrid, &sp.GridColor.R, &sp.GridColor.G, &sp.GridColor.B, &sp.GridColor.A, &createdUnix)
	if err == sql.ErrNoRows {
		return nil, newErr(KindNotFound, "load_space", fmt.Errorf("space %q not found", spaceID))
	}
	if err != nil {
		return nil, newErr(KindIO, "load_space", err)
	}
	if parentID.Valid {
		v := parentID.String
		sp.ParentID = &v
	}
	sp.CreatedAt = time.Unix(createdUnix, 0)
	return &sp, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanElement(rows scanner, spaceID string) (*model.Element, error) {
	var (
		id, kind                                       string
		shapeKind, shapeOptsJSON                        sql.NullString
		rotation                                        float64
		hidden, locked                                  bool
		x, y, z, w, h                                    sql.NullInt64
		cr, cg, cb, ca                                   sql.NullFloat64
		text                                             sql.NullString
		mediaKind, fromID, toID, pointsJSON               sql.NullString
		thumb                                            []byte
		durSec                                            sql.NullFloat64
		fromPoint, toPoint                                sql.NullInt64
		strokeWidth, dr, dg, db, da                       sql.NullFloat64
	)
	if err := rows.Scan(
		&id, &kind, &shapeKind, &rotation, &hidden, &locked, &shapeOptsJSON,
		&x, &y, &z, &w, &h, &cr, &cg, &cb, &ca, &text,
		&mediaKind, &thumb, &durSec,
		&fromID, &toID, &fromPoint, &toPoint,
		&pointsJSON, &strokeWidth, &dr, &dg, &db, &da,
	); err != nil {
		return nil, err
	}

	e := &model.Element{
		ID:              id,
		SpaceID:         spaceID,
		Kind:            model.Kind(kind),
		RotationDegrees: rotation,
		Hidden:          hidden,
		Locked:          locked,
		State:           model.StateSaved,
	}
	e.Pos = model.NewRef(model.Position{X: int(x.Int64), Y: int(y.Int64), Z: int(z.Int64)})
	e.Sz = model.NewRef(model.Size{W: int(w.Int64), H: int(h.Int64)})
	e.BG = model.NewRef(model.Color{R: cr.Float64, G: cg.Float64, B: cb.Float64, A: ca.Float64})
	e.Text = model.NewRef(text.String)

	if shapeOptsJSON.Valid && shapeOptsJSON.String != "" {
		var opts model.ShapeOptions
		if err := json.Unmarshal([]byte(shapeOptsJSON.String), &opts); err == nil {
			if shapeKind.Valid {
				opts.ShapeKind = model.ShapeKind(shapeKind.String)
			}
			e.Shape = &opts
		}
	}

	if mediaKind.Valid {
		e.MediaData = &model.Media{
			Kind:            model.MediaKind(mediaKind.String),
			Thumbnail:       thumb,
			DurationSeconds: durSec.Float64,
		}
	}

	if fromID.Valid {
		e.Conn = &model.Connection{
			FromElementID: fromID.String,
			ToElementID:   toID.String,
			FromPoint:     int(fromPoint.Int64),
			ToPoint:       int(toPoint.Int64),
		}
	}

	if pointsJSON.Valid && pointsJSON.String != "" {
		var pts []model.UnitPoint
		if err := json.Unmarshal([]byte(pointsJSON.String), &pts); err == nil {
			e.DrawingPay = &model.Drawing{
				Points:      pts,
				StrokeWidth: strokeWidth.Float64,
				Color:       model.Color{R: dr.Float64, G: dg.Float64, B: db.Float64, A: da.Float64},
			}
		}
	}

	return e, nil
}

// LoadMedia fetches an element's media bytes on demand.
func (s *Store) LoadMedia(elementID string) ([]byte, error) {
	var b []byte
	err := s.db.QueryRow(`SELECT bytes FROM media_blobs WHERE element_id = ?`, elementID).Scan(&b)
	if err == sql.ErrNoRows {
		return nil, newErr(KindNotFound, "load_media", fmt.Errorf("no media for %q", elementID))
	}
	if err != nil {
		return nil, newErr(KindIO, "load_media", err)
	}
	return b, nil
}

// SaveDirty writes elements whose state is New (insert) or Dirty (update),
// flips them to Saved in the caller's graph via the returned committed ids,
// and physically deletes rows whose state is Deleted. Connections whose
// endpoints no longer exist in the elements table are deleted too. The whole
// operation runs in one transaction that rolls back on the first failing
// row, per spec.md §4.1.
func (s *Store) SaveDirty(elements []*model.Element) (committed []string, err error) {
	err = withRetry(func() error {
		committed = nil
		tx, beginErr := s.db.Begin()
		if beginErr != nil {
			return newErr(KindIO, "save_dirty begin", beginErr)
		}

		live := make(map[string]bool)
		for _, e := range elements {
			if e.State != model.StateDeleted {
				live[e.ID] = true
			}
		}

		for _, e := range elements {
			var txErr error
			switch e.State {
			case model.StateNew:
				txErr = insertElement(tx, e)
			case model.StateDirty:
				txErr = updateElement(tx, e)
			case model.StateDeleted:
				txErr = deleteElementRow(tx, e.ID)
			default:
				continue
			}
			if txErr != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					log.Warn().Err(rbErr).Msg("store: rollback after save_dirty failure")
				}
				return newErr(KindIO, "save_dirty", fmt.Errorf("element %s: %w", e.ID, txErr))
			}
			committed = append(committed, e.ID)
		}

		if err := pruneDanglingConnections(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Warn().Err(rbErr).Msg("store: rollback after connection prune failure")
			}
			return newErr(KindIntegrity, "save_dirty prune", err)
		}

		if err := tx.Commit(); err != nil {
			return newErr(KindIO, "save_dirty commit", err)
		}
		return nil
	})
	return committed, err
}

func insertElement(tx *sql.Tx, e *model.Element) error {
	var shapeKind, shapeOptsJSON sql.NullString
	if e.Shape != nil {
		shapeKind = sql.NullString{String: string(e.Shape.ShapeKind), Valid: true}
		if b, err := json.Marshal(e.Shape); err == nil {
			shapeOptsJSON = sql.NullString{String: string(b), Valid: true}
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO elements (id, space_id, kind, shape_kind, rotation_degrees, hidden, locked, shape_opts_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SpaceID, string(e.Kind), shapeKind, e.RotationDegrees, e.Hidden, e.Locked, shapeOptsJSON,
	); err != nil {
		return err
	}
	return writeSubRows(tx, e, false)
}

func updateElement(tx *sql.Tx, e *model.Element) error {
	var shapeKind, shapeOptsJSON sql.NullString
	if e.Shape != nil {
		shapeKind = sql.NullString{String: string(e.Shape.ShapeKind), Valid: true}
		if b, err := json.Marshal(e.Shape); err == nil {
			shapeOptsJSON = sql.NullString{String: string(b), Valid: true}
		}
	}
	if _, err := tx.Exec(
		`UPDATE elements SET kind=?, shape_kind=?, rotation_degrees=?, hidden=?, locked=?, shape_opts_json=?
		 WHERE id=?`,
		string(e.Kind), shapeKind, e.RotationDegrees, e.Hidden, e.Locked, shapeOptsJSON, e.ID,
	); err != nil {
		return err
	}
	return writeSubRows(tx, e, true)
}

func writeSubRows(tx *sql.Tx, e *model.Element, upsert bool) error {
	pos := e.Pos.Get()
	if err := upsertRow(tx, upsert, "positions", "element_id", e.ID,
		"x, y, z", pos.X, pos.Y, pos.Z); err != nil {
		return err
	}
	sz := e.Sz.Get()
	if err := upsertRow(tx, upsert, "sizes", "element_id", e.ID,
		"w, h", sz.W, sz.H); err != nil {
		return err
	}
	bg := e.BG.Get()
	if err := upsertRow(tx, upsert, "colors", "element_id", e.ID,
		"r, g, b, a", bg.R, bg.G, bg.B, bg.A); err != nil {
		return err
	}
	if err := upsertRow(tx, upsert, "texts", "element_id", e.ID,
		"text", e.Text.Get()); err != nil {
		return err
	}
	if e.MediaData != nil {
		if err := upsertRow(tx, upsert, "media_blobs", "element_id", e.ID,
			"kind, bytes, thumbnail, duration_seconds",
			string(e.MediaData.Kind), e.MediaData.Bytes, e.MediaData.Thumbnail, e.MediaData.DurationSeconds); err != nil {
			return err
		}
	}
	if e.Conn != nil {
		if err := upsertRow(tx, upsert, "connections", "element_id", e.ID,
			"from_element_id, to_element_id, from_point, to_point",
			e.Conn.FromElementID, e.Conn.ToElementID, e.Conn.FromPoint, e.Conn.ToPoint); err != nil {
			return err
		}
	}
	if e.DrawingPay != nil {
		pts, err := json.Marshal(e.DrawingPay.Points)
		if err != nil {
			return err
		}
		c := e.DrawingPay.Color
		if err := upsertRow(tx, upsert, "drawings", "element_id", e.ID,
			"points_json, stroke_width, color_r, color_g, color_b, color_a",
			string(pts), e.DrawingPay.StrokeWidth, c.R, c.G, c.B, c.A); err != nil {
			return err
		}
	}
	return nil
}

// upsertRow deletes then inserts the element's sub-row for a given table,
// which is simpler and no less correct than a real UPSERT given every
// sub-row is keyed 1:1 by element_id and fully rewritten on every save.
func upsertRow(tx *sql.Tx, upsert bool, table, keyCol, keyVal, cols string, args ...any) error {
	if upsert {
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, keyCol), keyVal); err != nil {
			return err
		}
	}
	placeholders := ""
	for i := range args {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
	}
	allArgs := append([]any{keyVal}, args...)
	_, err := tx.Exec(
		fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (?, %s)`, table, keyCol, cols, placeholders),
		allArgs...,
	)
	return err
}

func deleteElementRow(tx *sql.Tx, id string) error {
	for _, table := range []string{"positions", "sizes", "colors", "texts", "media_blobs", "connections", "drawings"} {
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE element_id = ?`, table), id); err != nil {
			return err
		}
	}
	_, err := tx.Exec(`DELETE FROM elements WHERE id = ?`, id)
	return err
}

// pruneDanglingConnections deletes connection rows whose endpoints no
// longer exist as elements, enforcing testable property 3 (connection
// referential integrity at commit).
func pruneDanglingConnections(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DELETE FROM connections
		WHERE from_element_id NOT IN (SELECT id FROM elements)
		   OR to_element_id NOT IN (SELECT id FROM elements)`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		DELETE FROM elements
		WHERE kind = 'connection' AND id NOT IN (SELECT element_id FROM connections)`)
	return err
}

// DeleteSpaceIfEmpty deletes a space row if it has no live elements or
// child spaces (enforced by the caller via model.Graph.ChildlessSpace).
func (s *Store) DeleteSpaceIfEmpty(spaceID string) error {
	return withRetry(func() error {
		_, err := s.db.Exec(`DELETE FROM spaces WHERE id = ?`, spaceID)
		if err != nil {
			return newErr(KindIO, "delete_space", err)
		}
		return nil
	})
}

// CreateSpace inserts a new space row.
func (s *Store) CreateSpace(sp *model.Space) error {
	var parentID any
	if sp.ParentID != nil {
		parentID = *sp.ParentID
	}
	return withRetry(func() error {
		_, err := s.db.Exec(`
			INSERT INTO spaces (id, name, parent_id, bg_r, bg_g, bg_b, bg_a, show_grid, grid_r, grid_g, grid_b, grid_a, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sp.ID, sp.Name, parentID,
			sp.BackgroundColor.R, sp.BackgroundColor.G, sp.BackgroundColor.B, sp.BackgroundColor.A,
			sp.ShowGrid, sp.GridColor.R, sp.GridColor.G, sp.GridColor.B, sp.GridColor.A,
			sp.CreatedAt.Unix(),
		)
		if err != nil {
			return newErr(KindIO, "create_space", err)
		}
		return nil
	})
}

// SaveSpaceSettings persists a space's background/grid settings.
func (s *Store) SaveSpaceSettings(sp *model.Space) error {
	return withRetry(func() error {
		_, err := s.db.Exec(`
			UPDATE spaces SET bg_r=?, bg_g=?, bg_b=?, bg_a=?, show_grid=?, grid_r=?, grid_g=?, grid_b=?, grid_a=?
			WHERE id=?`,
			sp.BackgroundColor.R, sp.BackgroundColor.G, sp.BackgroundColor.B, sp.BackgroundColor.A,
			sp.ShowGrid, sp.GridColor.R, sp.GridColor.G, sp.GridColor.B, sp.GridColor.A,
			sp.ID,
		)
		if err != nil {
			return newErr(KindIO, "save_space_settings", err)
		}
		return nil
	})
}
