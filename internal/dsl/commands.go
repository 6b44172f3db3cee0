package dsl

import (
	"time"

	"github.com/google/uuid"

	"github.com/xonecas/revel/internal/model"
)

// SpaceCreator is the narrow slice of store.Store that space_create needs,
// kept separate from model.Graph so the domain model never imports the
// persistence layer directly (same discipline as model.ActionRecorder).
type SpaceCreator interface {
	CreateSpace(sp *model.Space) error
}

func (r *Runtime) execCommand(cmd *CommandStmt) error {
	switch cmd.Name {
	case "note_create":
		return r.execShapelessCreate(cmd, model.KindNote)
	case "paper_note_create":
		return r.execShapelessCreate(cmd, model.KindPaperNote)
	case "text_create":
		return r.execShapelessCreate(cmd, model.KindInlineText)
	case "shape_create":
		return r.execShapeCreate(cmd)
	case "image_create":
		return r.execMediaCreate(cmd, model.MediaImage)
	case "video_create":
		return r.execMediaCreate(cmd, model.MediaVideo)
	case "audio_create":
		return r.execMediaCreate(cmd, model.MediaAudio)
	case "space_create":
		return r.execSpaceCreate(cmd)
	case "connect":
		return r.execConnect(cmd)
	case "element_delete":
		return r.execElementDelete(cmd)
	case "text_update":
		return r.execTextUpdate(cmd)
	case "animate_move":
		return r.execAnimateMove(cmd)
	case "animate_resize":
		return r.execAnimateResize(cmd)
	case "animate_rotate":
		return r.execAnimateRotate(cmd)
	case "animate_color":
		return r.execAnimateColor(cmd)
	case "animate_appear":
		return r.execAnimateAppearDisappear(cmd, true)
	case "animate_disappear":
		return r.execAnimateAppearDisappear(cmd, false)
	case "animate_create":
		return r.execAnimateCreateDelete(cmd, true)
	case "animate_delete":
		return r.execAnimateCreateDelete(cmd, false)
	case "canvas_background":
		return r.execCanvasBackground(cmd)
	case "presentation_next":
		return r.execPresentationNext(cmd)
	case "presentation_auto_next_if":
		return r.execPresentationAutoNextIf(cmd)
	default:
		return rtErr(cmd.Pos, "unknown command %q", cmd.Name)
	}
}

func (r *Runtime) declaredID(arg Expr) string {
	return arg.(*Ident).Name
}

func (r *Runtime) refElement(arg Expr) (*model.Element, error) {
	id := r.declaredID(arg)
	e, ok := r.elements[id]
	if !ok {
		return nil, rtErr(arg.exprPos(), "element %q is not defined", id)
	}
	return e, nil
}

// shapeOptions parses the option map common to every create command,
// defaulting anything absent.
func (r *Runtime) shapeOptions(cmd *CommandStmt) (*model.ShapeOptions, model.Color, float64, error) {
	bg := model.Color{R: 1, G: 1, B: 1, A: 1}
	rotation := 0.0
	opts := &model.ShapeOptions{
		StrokeStyle: model.StrokeSolid,
		FillStyle:   model.FillSolid,
		Stroke:      1,
	}

	if v, ok := cmd.Options["bg"]; ok {
		s, err := r.evalString2(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		c, err := r.resolveColor(v.exprPos(), s)
		if err != nil {
			return nil, bg, rotation, err
		}
		bg = c
	}
	if v, ok := cmd.Options["rotation"]; ok {
		f, err := r.evalFloat(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		rotation = f
	}
	if v, ok := cmd.Options["filled"]; ok {
		opts.Filled = v.(*BoolLit).Val
	}
	if v, ok := cmd.Options["stroke"]; ok {
		f, err := r.evalFloat(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		opts.Stroke = f
	}
	if v, ok := cmd.Options["stroke_color"]; ok {
		s, err := r.evalString2(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		c, err := r.resolveColor(v.exprPos(), s)
		if err != nil {
			return nil, bg, rotation, err
		}
		opts.StrokeColor = c
	}
	if v, ok := cmd.Options["stroke_style"]; ok {
		name, err := r.evalIdentName(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		if !validStrokeStyles[name] {
			return nil, bg, rotation, rtErr(v.exprPos(), "invalid stroke_style %q", name)
		}
		opts.StrokeStyle = model.StrokeStyle(name)
	}
	if v, ok := cmd.Options["fill_style"]; ok {
		name, err := r.evalIdentName(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		if !validFillStyles[name] {
			return nil, bg, rotation, rtErr(v.exprPos(), "invalid fill_style %q", name)
		}
		opts.FillStyle = model.FillStyle(name)
	}
	if v, ok := cmd.Options["line_start"]; ok {
		x, y, err := r.evalPoint(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		opts.LineStart = model.Point{X: x, Y: y}
	}
	if v, ok := cmd.Options["line_end"]; ok {
		x, y, err := r.evalPoint(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		opts.LineEnd = model.Point{X: x, Y: y}
	}
	if v, ok := cmd.Options["text_color"]; ok {
		s, err := r.evalString2(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		c, err := r.resolveColor(v.exprPos(), s)
		if err != nil {
			return nil, bg, rotation, err
		}
		opts.TextColor = c
	}
	if v, ok := cmd.Options["font"]; ok {
		s, err := r.evalString2(v)
		if err != nil {
			return nil, bg, rotation, err
		}
		opts.Font = s
	}
	return opts, bg, rotation, nil
}

func (r *Runtime) execShapelessCreate(cmd *CommandStmt, kind model.Kind) error {
	id := r.declaredID(cmd.Args[0])
	text, err := r.evalString2(cmd.Args[1])
	if err != nil {
		return err
	}
	x, y, err := r.evalPoint(cmd.Args[2])
	if err != nil {
		return err
	}
	w, h, err := r.evalPoint(cmd.Args[3])
	if err != nil {
		return err
	}
	_, bg, rotation, err := r.shapeOptions(cmd)
	if err != nil {
		return err
	}

	e := r.Graph.CreateElement(model.ElementConfig{
		SpaceID:         r.SpaceID,
		Kind:            kind,
		Position:        model.Position{X: x, Y: y},
		Size:            model.Size{W: w, H: h},
		RotationDegrees: rotation,
		BGColor:         bg,
		Text:            text,
	})
	r.elements[id] = e
	return nil
}

func (r *Runtime) execShapeCreate(cmd *CommandStmt) error {
	id := r.declaredID(cmd.Args[0])
	shapeName, err := r.evalIdentName(cmd.Args[1])
	if err != nil {
		return err
	}
	if !validShapeTypes[shapeName] {
		return rtErr(cmd.Args[1].exprPos(), "invalid shape type %q", shapeName)
	}
	text, err := r.evalString2(cmd.Args[2])
	if err != nil {
		return err
	}
	x, y, err := r.evalPoint(cmd.Args[3])
	if err != nil {
		return err
	}
	w, h, err := r.evalPoint(cmd.Args[4])
	if err != nil {
		return err
	}
	opts, bg, rotation, err := r.shapeOptions(cmd)
	if err != nil {
		return err
	}
	opts.ShapeKind = model.ShapeKind(shapeName)

	e := r.Graph.CreateElement(model.ElementConfig{
		SpaceID:         r.SpaceID,
		Kind:            model.KindShape,
		Position:        model.Position{X: x, Y: y},
		Size:            model.Size{W: w, H: h},
		RotationDegrees: rotation,
		BGColor:         bg,
		Text:            text,
		Shape:           opts,
	})
	r.elements[id] = e
	return nil
}

func (r *Runtime) execMediaCreate(cmd *CommandStmt, kind model.MediaKind) error {
	id := r.declaredID(cmd.Args[0])
	path, err := r.evalString2(cmd.Args[1])
	if err != nil {
		return err
	}
	x, y, err := r.evalPoint(cmd.Args[2])
	if err != nil {
		return err
	}
	w, h, err := r.evalPoint(cmd.Args[3])
	if err != nil {
		return err
	}
	_, bg, rotation, err := r.shapeOptions(cmd)
	if err != nil {
		return err
	}

	media := &model.Media{Kind: kind} // no bytes yet; they arrive via the same drag-and-drop/store path a user-created media element would use
	e := r.Graph.CreateElement(model.ElementConfig{
		SpaceID:         r.SpaceID,
		Kind:            model.KindMedia,
		Position:        model.Position{X: x, Y: y},
		Size:            model.Size{W: w, H: h},
		RotationDegrees: rotation,
		BGColor:         bg,
		Text:            path, // asset path/URL
		Media:           media,
	})
	r.elements[id] = e
	return nil
}

// execSpaceCreate creates a nested space and a space_ref element pointing
// at it. The child space's id is stashed in the element's Text field,
// since model.Element has no dedicated cross-reference slot for it (the
// domain model only links elements to elements via Connection).
func (r *Runtime) execSpaceCreate(cmd *CommandStmt) error {
	id := r.declaredID(cmd.Args[0])
	name, err := r.evalString2(cmd.Args[1])
	if err != nil {
		return err
	}
	x, y, err := r.evalPoint(cmd.Args[2])
	if err != nil {
		return err
	}
	w, h, err := r.evalPoint(cmd.Args[3])
	if err != nil {
		return err
	}
	_, bg, rotation, err := r.shapeOptions(cmd)
	if err != nil {
		return err
	}

	parentID := r.SpaceID
	child := &model.Space{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  &parentID,
		CreatedAt: time.Now(),
	}
	if r.SpaceStore != nil {
		if err := r.SpaceStore.CreateSpace(child); err != nil {
			return rtErr(cmd.Pos, "space_create: %v", err)
		}
	}
	r.Graph.PutSpace(child)

	e := r.Graph.CreateElement(model.ElementConfig{
		SpaceID:         parentID,
		Kind:            model.KindSpaceRef,
		Position:        model.Position{X: x, Y: y},
		Size:            model.Size{W: w, H: h},
		RotationDegrees: rotation,
		BGColor:         bg,
		Text:            child.ID,
	})
	r.elements[id] = e
	return nil
}

func (r *Runtime) execConnect(cmd *CommandStmt) error {
	from, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	to, err := r.refElement(cmd.Args[1])
	if err != nil {
		return err
	}
	r.Graph.CreateElement(model.ElementConfig{
		SpaceID: r.SpaceID,
		Kind:    model.KindConnection,
		Conn: &model.Connection{
			FromElementID: from.ID,
			ToElementID:   to.ID,
			FromPoint:     0,
			ToPoint:       2,
		},
	})
	return nil
}

func (r *Runtime) execElementDelete(cmd *CommandStmt) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	r.Graph.DeleteElement(e)
	delete(r.elements, r.declaredID(cmd.Args[0]))
	return nil
}

func (r *Runtime) execTextUpdate(cmd *CommandStmt) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	text, err := r.evalString2(cmd.Args[1])
	if err != nil {
		return err
	}
	r.Graph.UpdateText(e, text)
	return nil
}

func (r *Runtime) parseInterp(cmd *CommandStmt, idx int) (Interpolation, error) {
	if idx >= len(cmd.Args) {
		return InterpLinear, nil
	}
	name, err := r.evalIdentName(cmd.Args[idx])
	if err != nil {
		return "", err
	}
	if !validInterpolations[name] {
		return "", rtErr(cmd.Args[idx].exprPos(), "invalid interpolation %q", name)
	}
	return Interpolation(name), nil
}

func (r *Runtime) execAnimateMove(cmd *CommandStmt) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	fx, fy, err := r.evalPoint(cmd.Args[1])
	if err != nil {
		return err
	}
	tx, ty, err := r.evalPoint(cmd.Args[2])
	if err != nil {
		return err
	}
	start, err := r.evalFloat(cmd.Args[3])
	if err != nil {
		return err
	}
	dur, err := r.evalFloat(cmd.Args[4])
	if err != nil {
		return err
	}
	interp, err := r.parseInterp(cmd, 5)
	if err != nil {
		return err
	}
	r.Anim.Schedule(&animEntry{
		Element: e, Channel: chPosition,
		FromPoint: model.Position{X: fx, Y: fy},
		ToPoint:   model.Position{X: tx, Y: ty},
		Start:     start, Duration: dur, Interp: interp,
	})
	return nil
}

func (r *Runtime) execAnimateResize(cmd *CommandStmt) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	fw, fh, err := r.evalPoint(cmd.Args[1])
	if err != nil {
		return err
	}
	tw, th, err := r.evalPoint(cmd.Args[2])
	if err != nil {
		return err
	}
	start, err := r.evalFloat(cmd.Args[3])
	if err != nil {
		return err
	}
	dur, err := r.evalFloat(cmd.Args[4])
	if err != nil {
		return err
	}
	interp, err := r.parseInterp(cmd, 5)
	if err != nil {
		return err
	}
	r.Anim.Schedule(&animEntry{
		Element: e, Channel: chSize,
		FromSize: model.Size{W: fw, H: fh},
		ToSize:   model.Size{W: tw, H: th},
		Start:    start, Duration: dur, Interp: interp,
	})
	return nil
}

func (r *Runtime) execAnimateRotate(cmd *CommandStmt) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	from, err := r.evalFloat(cmd.Args[1])
	if err != nil {
		return err
	}
	to, err := r.evalFloat(cmd.Args[2])
	if err != nil {
		return err
	}
	start, err := r.evalFloat(cmd.Args[3])
	if err != nil {
		return err
	}
	dur, err := r.evalFloat(cmd.Args[4])
	if err != nil {
		return err
	}
	interp, err := r.parseInterp(cmd, 5)
	if err != nil {
		return err
	}
	r.Anim.Schedule(&animEntry{
		Element: e, Channel: chRotation,
		FromNum: from, ToNum: to,
		Start: start, Duration: dur, Interp: interp,
	})
	return nil
}

func (r *Runtime) execAnimateColor(cmd *CommandStmt) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	fromS, err := r.evalString2(cmd.Args[1])
	if err != nil {
		return err
	}
	toS, err := r.evalString2(cmd.Args[2])
	if err != nil {
		return err
	}
	from, err := r.resolveColor(cmd.Args[1].exprPos(), fromS)
	if err != nil {
		return err
	}
	to, err := r.resolveColor(cmd.Args[2].exprPos(), toS)
	if err != nil {
		return err
	}
	start, err := r.evalFloat(cmd.Args[3])
	if err != nil {
		return err
	}
	dur, err := r.evalFloat(cmd.Args[4])
	if err != nil {
		return err
	}
	interp, err := r.parseInterp(cmd, 5)
	if err != nil {
		return err
	}
	r.Anim.Schedule(&animEntry{
		Element: e, Channel: chColor,
		FromColor: from, ToColor: to,
		Start: start, Duration: dur, Interp: interp,
	})
	return nil
}

func (r *Runtime) execAnimateAppearDisappear(cmd *CommandStmt, appear bool) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	start, err := r.evalFloat(cmd.Args[1])
	if err != nil {
		return err
	}
	dur, err := r.evalFloat(cmd.Args[2])
	if err != nil {
		return err
	}
	interp, err := r.parseInterp(cmd, 3)
	if err != nil {
		return err
	}
	from, to := 0.0, e.BG.Get().A
	if !appear {
		from, to = e.BG.Get().A, 0.0
	}
	r.Anim.Schedule(&animEntry{
		Element: e, Channel: chOpacity,
		FromNum: from, ToNum: to,
		Start: start, Duration: dur, Interp: interp,
		OnComplete: func(g *model.Graph) {
			e.Hidden = !appear
		},
	})
	return nil
}

func (r *Runtime) execAnimateCreateDelete(cmd *CommandStmt, create bool) error {
	e, err := r.refElement(cmd.Args[0])
	if err != nil {
		return err
	}
	start, err := r.evalFloat(cmd.Args[1])
	if err != nil {
		return err
	}
	dur, err := r.evalFloat(cmd.Args[2])
	if err != nil {
		return err
	}
	interp, err := r.parseInterp(cmd, 3)
	if err != nil {
		return err
	}

	if create {
		e.Hidden = true
	}
	from, to := 0.0, 1.0
	if !create {
		from, to = 1.0, 0.0
	}
	r.Anim.Schedule(&animEntry{
		Element: e, Channel: chOpacity,
		FromNum: from, ToNum: to,
		Start: start, Duration: dur, Interp: interp,
		OnComplete: func(g *model.Graph) {
			if create {
				e.Hidden = false
			} else {
				g.DeleteElement(e)
			}
		},
	})
	return nil
}

func (r *Runtime) execCanvasBackground(cmd *CommandStmt) error {
	sp := r.Graph.SpaceByID(r.SpaceID)
	if sp == nil {
		return rtErr(cmd.Pos, "canvas_background: current space is not loaded")
	}
	colorStr, err := r.evalString2(cmd.Args[0])
	if err != nil {
		return err
	}
	c, err := r.resolveColor(cmd.Args[0].exprPos(), colorStr)
	if err != nil {
		return err
	}
	r.Graph.SetSpaceBackground(sp, c)
	if len(cmd.Args) > 1 {
		gridStr, err := r.evalString2(cmd.Args[1])
		if err != nil {
			return err
		}
		gc, err := r.resolveColor(cmd.Args[1].exprPos(), gridStr)
		if err != nil {
			return err
		}
		// A grid_color argument is how this command turns the grid on;
		// set_space_grid's enabled flag has no other DSL surface.
		r.Graph.SetSpaceGrid(sp, gc, true)
	}
	return nil
}

func (r *Runtime) execPresentationNext(cmd *CommandStmt) error {
	if len(r.presentationOrder) == 0 {
		return nil
	}
	r.presentationIndex = (r.presentationIndex + 1) % len(r.presentationOrder)
	return nil
}

func (r *Runtime) execPresentationAutoNextIf(cmd *CommandStmt) error {
	name, err := r.evalIdentName(cmd.Args[0])
	if err != nil {
		return err
	}
	v, ok := r.lookup(name)
	if !ok {
		return rtErr(cmd.Pos, "presentation_auto_next_if: %q is not declared", name)
	}
	lv, err := r.eval(cmd.Args[1])
	if err != nil {
		return err
	}
	if valuesEqual(v.val, lv) {
		return r.execPresentationNext(cmd)
	}
	return nil
}
