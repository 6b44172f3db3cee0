package dsl

// eval evaluates an expression to a runtime Value, per spec.md §4.7's
// standard-precedence arithmetic/comparison/logical rules with int/real
// promotion and a runtime error on division by zero.
func (r *Runtime) eval(e Expr) (Value, error) {
	switch ex := e.(type) {
	case *IntLit:
		return intVal(ex.Val), nil
	case *RealLit:
		return realVal(ex.Val), nil
	case *BoolLit:
		return boolVal(ex.Val), nil
	case *StringLit:
		return r.evalString(ex)
	case *PointLit:
		x, err := r.eval(ex.X)
		if err != nil {
			return Value{}, err
		}
		y, err := r.eval(ex.Y)
		if err != nil {
			return Value{}, err
		}
		return arrVal([]float64{x.AsFloat(), y.AsFloat()}), nil
	case *Ident:
		v, ok := r.lookup(ex.Name)
		if !ok {
			return Value{}, rtErr(ex.Pos, "variable %q is not declared", ex.Name)
		}
		if v.val.Type == TypeArray {
			return arrVal(v.array), nil
		}
		return v.val, nil
	case *IndexExpr:
		v, ok := r.lookup(ex.Array)
		if !ok {
			return Value{}, rtErr(ex.Pos, "variable %q is not declared", ex.Array)
		}
		idx, err := r.evalInt(ex.Index)
		if err != nil {
			return Value{}, err
		}
		if idx < 0 || int(idx) >= len(v.array) {
			return Value{}, rtErr(ex.Pos, "array index %d out of range for %q", idx, ex.Array)
		}
		return realVal(v.array[idx]), nil
	case *UnaryExpr:
		return r.evalUnary(ex)
	case *BinaryExpr:
		return r.evalBinary(ex)
	default:
		return Value{}, rtErr(Pos{}, "unknown expression %T", e)
	}
}

func (r *Runtime) evalString(s *StringLit) (Value, error) {
	out := ""
	for i, part := range s.Parts {
		if part.ExprSrc == "" {
			out += part.Literal
			continue
		}
		v, err := r.eval(s.ExprParts[i])
		if err != nil {
			return Value{}, err
		}
		out += v.String()
	}
	return strVal(out), nil
}

func (r *Runtime) evalUnary(ex *UnaryExpr) (Value, error) {
	v, err := r.eval(ex.X)
	if err != nil {
		return Value{}, err
	}
	switch ex.Op {
	case OpNot:
		return boolVal(!v.B), nil
	case OpNeg:
		if v.Type == TypeInt {
			return intVal(-v.I), nil
		}
		return realVal(-v.AsFloat()), nil
	default:
		return Value{}, rtErr(ex.Pos, "unknown unary operator")
	}
}

func (r *Runtime) evalBinary(ex *BinaryExpr) (Value, error) {
	l, err := r.eval(ex.Left)
	if err != nil {
		return Value{}, err
	}
	rv, err := r.eval(ex.Right)
	if err != nil {
		return Value{}, err
	}

	switch ex.Op {
	case OpAnd:
		return boolVal(l.B && rv.B), nil
	case OpOr:
		return boolVal(l.B || rv.B), nil
	case OpEq:
		return boolVal(valuesEqual(l, rv)), nil
	case OpNe:
		return boolVal(!valuesEqual(l, rv)), nil
	}

	lf, rf := l.AsFloat(), rv.AsFloat()
	switch ex.Op {
	case OpLt:
		return boolVal(lf < rf), nil
	case OpLe:
		return boolVal(lf <= rf), nil
	case OpGt:
		return boolVal(lf > rf), nil
	case OpGe:
		return boolVal(lf >= rf), nil
	}

	real := l.Type == TypeReal || rv.Type == TypeReal
	switch ex.Op {
	case OpAdd:
		if real {
			return realVal(lf + rf), nil
		}
		return intVal(l.I + rv.I), nil
	case OpSub:
		if real {
			return realVal(lf - rf), nil
		}
		return intVal(l.I - rv.I), nil
	case OpMul:
		if real {
			return realVal(lf * rf), nil
		}
		return intVal(l.I * rv.I), nil
	case OpDiv:
		if rf == 0 {
			return Value{}, rtErr(ex.Pos, "division by zero")
		}
		if real {
			return realVal(lf / rf), nil
		}
		return intVal(l.I / rv.I), nil
	case OpMod:
		if rv.I == 0 {
			return Value{}, rtErr(ex.Pos, "division by zero")
		}
		return intVal(l.I % rv.I), nil
	default:
		return Value{}, rtErr(ex.Pos, "unknown binary operator")
	}
}

func valuesEqual(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat() == b.AsFloat()
	}
	switch a.Type {
	case TypeBool:
		return a.B == b.B
	case TypeString:
		return a.S == b.S
	default:
		return false
	}
}

// evalInt evaluates e and truncates it to an int64, used wherever the
// grammar requires a whole number (array sizes, loop bounds, indices).
func (r *Runtime) evalInt(e Expr) (int64, error) {
	v, err := r.eval(e)
	if err != nil {
		return 0, err
	}
	if v.Type == TypeInt {
		return v.I, nil
	}
	return int64(v.R), nil
}

// evalPoint evaluates a point-literal expression to (x, y) ints for
// element geometry.
func (r *Runtime) evalPoint(e Expr) (int, int, error) {
	pt, ok := e.(*PointLit)
	if !ok {
		return 0, 0, rtErr(e.exprPos(), "expected a point literal")
	}
	x, err := r.evalInt(pt.X)
	if err != nil {
		return 0, 0, err
	}
	y, err := r.evalInt(pt.Y)
	if err != nil {
		return 0, 0, err
	}
	return int(x), int(y), nil
}

func (r *Runtime) evalString2(e Expr) (string, error) {
	v, err := r.eval(e)
	if err != nil {
		return "", err
	}
	return v.S, nil
}

func (r *Runtime) evalFloat(e Expr) (float64, error) {
	v, err := r.eval(e)
	if err != nil {
		return 0, err
	}
	return v.AsFloat(), nil
}

func (r *Runtime) evalIdentName(e Expr) (string, error) {
	id, ok := e.(*Ident)
	if !ok {
		return "", rtErr(e.exprPos(), "expected an identifier")
	}
	return id.Name, nil
}
