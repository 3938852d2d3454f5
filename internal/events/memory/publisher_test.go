package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studyvault/sitemapd/internal/events"
)

func TestPublishRecordsMessages(t *testing.T) {
	t.Parallel()

	pub := New()
	ctx := context.Background()

	id, err := pub.Publish(ctx, "sitemap.generated", events.SitemapGenerated{URLCount: 7})
	require.NoError(t, err)
	require.Equal(t, "memory-1", id)

	id, err = pub.Publish(ctx, "sitemap.generated", events.SitemapGenerated{URLCount: 9})
	require.NoError(t, err)
	require.Equal(t, "memory-2", id)

	msgs := pub.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "sitemap.generated", msgs[0].Topic)
	require.Equal(t, 7, msgs[0].Payload.(events.SitemapGenerated).URLCount)
}

func TestMessagesReturnsCopy(t *testing.T) {
	t.Parallel()

	pub := New()
	_, err := pub.Publish(context.Background(), "a", "one")
	require.NoError(t, err)

	msgs := pub.Messages()
	msgs[0].Topic = "mutated"

	require.Equal(t, "a", pub.Messages()[0].Topic)
}
