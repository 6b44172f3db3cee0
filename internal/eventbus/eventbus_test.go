package eventbus

import "testing"

func TestPublish_DeliversToMatchingKindOnly(t *testing.T) {
	b := New()
	var gotScroll, gotKey bool
	b.Subscribe(KindScroll, func(Event) bool { gotScroll = true; return false }, nil)
	b.Subscribe(KindKeyPress, func(Event) bool { gotKey = true; return false }, nil)

	b.Publish(Event{Kind: KindScroll})

	if !gotScroll {
		t.Fatalf("expected scroll subscriber to fire")
	}
	if gotKey {
		t.Fatalf("key_press subscriber should not have fired for a scroll event")
	}
}

func TestPublish_StopsAtFirstHandledReturningTrue(t *testing.T) {
	b := New()
	var second bool
	b.Subscribe(KindPrimaryPress, func(Event) bool { return true }, nil)
	b.Subscribe(KindPrimaryPress, func(Event) bool { second = true; return false }, nil)

	handled := b.Publish(Event{Kind: KindPrimaryPress})

	if !handled {
		t.Fatalf("expected Publish to report handled")
	}
	if second {
		t.Fatalf("second subscriber should not run once the first reports handled")
	}
}

func TestPublish_UnhandledWhenNoSubscriberHandles(t *testing.T) {
	b := New()
	b.Subscribe(KindMotion, func(Event) bool { return false }, nil)
	if b.Publish(Event{Kind: KindMotion}) {
		t.Fatalf("expected Publish to report unhandled")
	}
}

func TestPublish_NoSubscribersIsUnhandled(t *testing.T) {
	b := New()
	if b.Publish(Event{Kind: KindLeave}) {
		t.Fatalf("expected Publish with no subscribers to report unhandled")
	}
}

func TestSubscribersFireInRegistrationOrder(t *testing.T) {
	b := New()
	var order []int
	b.Subscribe(KindKeyPress, func(Event) bool { order = append(order, 1); return false }, nil)
	b.Subscribe(KindKeyPress, func(Event) bool { order = append(order, 2); return false }, nil)
	b.Subscribe(KindKeyPress, func(Event) bool { order = append(order, 3); return false }, nil)

	b.Publish(Event{Kind: KindKeyPress})

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestUnsubscribe_RemovesHandlerAndRunsCleanup(t *testing.T) {
	b := New()
	var fired, cleaned bool
	id := b.Subscribe(KindScroll, func(Event) bool { fired = true; return false }, func() { cleaned = true })

	b.Unsubscribe(id)
	b.Publish(Event{Kind: KindScroll})

	if fired {
		t.Fatalf("unsubscribed handler should not fire")
	}
	if !cleaned {
		t.Fatalf("expected cleanup hook to run on Unsubscribe")
	}
}

func TestUnsubscribe_UnknownIDIsNoop(t *testing.T) {
	b := New()
	b.Unsubscribe(999)
}

func TestModifierHas(t *testing.T) {
	m := ModShift | ModCtrl
	if !m.Has(ModShift) || !m.Has(ModCtrl) {
		t.Fatalf("expected both ModShift and ModCtrl set in %v", m)
	}
	if m.Has(ModAlt) {
		t.Fatalf("did not expect ModAlt set in %v", m)
	}
}

func TestPublish_CarriesKindSpecificData(t *testing.T) {
	b := New()
	var got *ScrollData
	b.Subscribe(KindScroll, func(ev Event) bool {
		got, _ = ev.Data.(*ScrollData)
		return true
	}, nil)

	b.Publish(Event{Kind: KindScroll, Data: &ScrollData{DeltaY: -3}})

	if got == nil || got.DeltaY != -3 {
		t.Fatalf("expected scroll data to carry through, got %+v", got)
	}
}
