package action

import "sync"

var builtin = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
})

// Builtin returns the process-wide registry holding the built-in action kinds.
func Builtin() *Registry { return builtin() }

func as[T Action](a Action, kind Kind) (T, error) {
	v, ok := a.(T)
	if !ok {
		var zero T
		return zero, mismatch(kind, "", "cannot encode %T", a)
	}
	return v, nil
}

// RegisterBuiltins registers the thirteen built-in action kinds on r.
func RegisterBuiltins(r *Registry) error {
	for _, v := range builtinVariants() {
		if err := r.Register(v); err != nil {
			return err
		}
	}
	return nil
}

func builtinVariants() []Variant {
	return []Variant{
		{
			Kind:   KindParkArms,
			Table:  "park_arms_actions",
			Fields: []Field{armField("arm")},
			New:    func() Action { return &ParkArms{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*ParkArms](a, KindParkArms)
				if err != nil {
					return nil, err
				}
				return Record{"arm": v.Arm}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &ParkArms{Base: b, Arm: r.Arm("arm")}
			},
		},
		{
			Kind:   KindNavigate,
			Table:  "navigate_actions",
			Fields: []Field{refField("position", ValuePosition), refField("orientation", ValueQuaternion)},
			New:    func() Action { return &Navigate{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Navigate](a, KindNavigate)
				if err != nil {
					return nil, err
				}
				return Record{"position": v.Position, "orientation": v.Orientation}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Navigate{
					Base:        b,
					Position:    refOf[Position](r, "position"),
					Orientation: refOf[Quaternion](r, "orientation"),
				}
			},
		},
		{
			Kind:   KindMoveTorso,
			Table:  "move_torso_actions",
			Fields: []Field{nullableFloatField("position")},
			New:    func() Action { return &MoveTorso{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*MoveTorso](a, KindMoveTorso)
				if err != nil {
					return nil, err
				}
				return Record{"position": v.Position}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &MoveTorso{Base: b, Position: r.FloatPtr("position")}
			},
		},
		{
			Kind:   KindSetGripper,
			Table:  "set_gripper_actions",
			Fields: []Field{stringField("gripper"), stringField("motion")},
			New:    func() Action { return &SetGripper{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*SetGripper](a, KindSetGripper)
				if err != nil {
					return nil, err
				}
				return Record{"gripper": v.Gripper, "motion": v.Motion}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &SetGripper{Base: b, Gripper: r.String("gripper"), Motion: r.String("motion")}
			},
		},
		{
			Kind:   KindRelease,
			Table:  "release_actions",
			Fields: []Field{stringField("gripper"), refField("object", ValueObject)},
			New:    func() Action { return &Release{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Release](a, KindRelease)
				if err != nil {
					return nil, err
				}
				return Record{"gripper": v.Gripper, "object": v.Object}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Release{Base: b, Gripper: r.String("gripper"), Object: refOf[ObjectDesignator](r, "object")}
			},
		},
		{
			Kind:   KindGrip,
			Table:  "grip_actions",
			Fields: []Field{stringField("gripper"), floatField("effort"), refField("object", ValueObject)},
			New:    func() Action { return &Grip{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Grip](a, KindGrip)
				if err != nil {
					return nil, err
				}
				return Record{"gripper": v.Gripper, "effort": v.Effort, "object": v.Object}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Grip{
					Base:    b,
					Gripper: r.String("gripper"),
					Effort:  r.Float("effort"),
					Object:  refOf[ObjectDesignator](r, "object"),
				}
			},
		},
		{
			Kind:   KindPickUp,
			Table:  "pick_up_actions",
			Fields: []Field{stringField("arm"), stringField("grasp"), refField("object", ValueObject)},
			New:    func() Action { return &PickUp{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*PickUp](a, KindPickUp)
				if err != nil {
					return nil, err
				}
				return Record{"arm": v.Arm, "grasp": v.Grasp, "object": v.Object}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &PickUp{
					Base:   b,
					Arm:    r.String("arm"),
					Grasp:  r.String("grasp"),
					Object: refOf[ObjectDesignator](r, "object"),
				}
			},
		},
		{
			Kind:  KindPlace,
			Table: "place_actions",
			Fields: []Field{
				stringField("arm"),
				refField("position", ValuePosition),
				refField("orientation", ValueQuaternion),
				refField("object", ValueObject),
			},
			New: func() Action { return &Place{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Place](a, KindPlace)
				if err != nil {
					return nil, err
				}
				return Record{"arm": v.Arm, "position": v.Position, "orientation": v.Orientation, "object": v.Object}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Place{
					Base:        b,
					Arm:         r.String("arm"),
					Position:    refOf[Position](r, "position"),
					Orientation: refOf[Quaternion](r, "orientation"),
					Object:      refOf[ObjectDesignator](r, "object"),
				}
			},
		},
		{
			Kind:  KindTransport,
			Table: "transport_actions",
			Fields: []Field{
				stringField("arm"),
				refField("position", ValuePosition),
				refField("orientation", ValueQuaternion),
				refField("object", ValueObject),
			},
			New: func() Action { return &Transport{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Transport](a, KindTransport)
				if err != nil {
					return nil, err
				}
				return Record{"arm": v.Arm, "position": v.Position, "orientation": v.Orientation, "object": v.Object}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Transport{
					Base:        b,
					Arm:         r.String("arm"),
					Position:    refOf[Position](r, "position"),
					Orientation: refOf[Quaternion](r, "orientation"),
					Object:      refOf[ObjectDesignator](r, "object"),
				}
			},
		},
		{
			Kind:   KindLookAt,
			Table:  "look_at_actions",
			Fields: []Field{refField("position", ValuePosition)},
			New:    func() Action { return &LookAt{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*LookAt](a, KindLookAt)
				if err != nil {
					return nil, err
				}
				return Record{"position": v.Position}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &LookAt{Base: b, Position: refOf[Position](r, "position")}
			},
		},
		{
			Kind:   KindDetect,
			Table:  "detect_actions",
			Fields: []Field{refField("object", ValueObject)},
			New:    func() Action { return &Detect{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Detect](a, KindDetect)
				if err != nil {
					return nil, err
				}
				return Record{"object": v.Object}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Detect{Base: b, Object: refOf[ObjectDesignator](r, "object")}
			},
		},
		{
			Kind:   KindOpen,
			Table:  "open_actions",
			Fields: []Field{stringField("arm"), floatField("distance"), refField("object", ValueObject)},
			New:    func() Action { return &Open{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Open](a, KindOpen)
				if err != nil {
					return nil, err
				}
				return Record{"arm": v.Arm, "distance": v.Distance, "object": v.Object}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Open{
					Base:     b,
					Arm:      r.String("arm"),
					Distance: r.Float("distance"),
					Object:   refOf[ObjectDesignator](r, "object"),
				}
			},
		},
		{
			Kind:   KindClose,
			Table:  "close_actions",
			Fields: []Field{stringField("arm")},
			New:    func() Action { return &Close{} },
			Encode: func(a Action) (Record, error) {
				v, err := as[*Close](a, KindClose)
				if err != nil {
					return nil, err
				}
				return Record{"arm": v.Arm}, nil
			},
			Decode: func(b Base, r Record) Action {
				return &Close{Base: b, Arm: r.String("arm")}
			},
		},
	}
}
