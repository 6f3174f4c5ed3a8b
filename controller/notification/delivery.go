package notification

import (
	"context"

	"plannerjobs/model"
	"plannerjobs/services"
)

// deliverToSubscriptions pushes payload to every subscription of the user
// and returns how many deliveries succeeded. Subscriptions the transport
// reports as permanently gone are deleted from the store; other failures are
// logged and skipped, there is no in-cycle retry.
func deliverToSubscriptions(ctx context.Context, deps Deps, userEmail string, subs []model.PushSubscription, payload services.PushPayload) int {
	delivered := 0
	for _, sub := range subs {
		err := deps.Push.Send(ctx, sub, payload)
		if err == nil {
			delivered++
			continue
		}
		if services.IsSubscriptionGone(err) {
			deps.logger().Infow("removing dead push subscription",
				"user", userEmail, "subscription", sub.SubscriptionID, "error", err)
			if delErr := deps.Store.DeleteSubscription(ctx, userEmail, sub.SubscriptionID); delErr != nil {
				deps.logger().Warnw("failed to delete dead subscription",
					"user", userEmail, "subscription", sub.SubscriptionID, "error", delErr)
			}
			continue
		}
		deps.logger().Warnw("push delivery failed", "user", userEmail, "error", err)
	}
	return delivered
}
