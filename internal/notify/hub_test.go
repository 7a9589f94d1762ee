package notify

import "testing"

func TestHub_PublishReachesSubscribersInOrder(t *testing.T) {
	hub := NewHub()
	var got []string
	hub.Subscribe("user_roles", func(table string) { got = append(got, "first:"+table) })
	hub.Subscribe("user_roles", func(table string) { got = append(got, "second:"+table) })
	hub.Subscribe("payment_requests", func(table string) { got = append(got, "other:"+table) })

	hub.Publish("user_roles")

	if len(got) != 2 || got[0] != "first:user_roles" || got[1] != "second:user_roles" {
		t.Errorf("notifications = %v", got)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	calls := 0
	unsubscribe := hub.Subscribe("members", func(string) { calls++ })
	hub.Publish("members")
	unsubscribe()
	unsubscribe() // safe to call again
	hub.Publish("members")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestHub_PublishUnknownTable(t *testing.T) {
	hub := NewHub()
	hub.Publish("never_subscribed") // must not panic
}
