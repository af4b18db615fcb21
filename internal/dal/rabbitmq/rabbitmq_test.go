package rabbitmq

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNotificationsQueueName(t *testing.T) {
	viper.Set("rabbitmq.notifications.queue", "")
	assert.Equal(t, "oms.order.notifications", NotificationsQueueName())

	viper.Set("rabbitmq.notifications.queue", "oms.order.notifications.staging")
	defer viper.Set("rabbitmq.notifications.queue", "")
	assert.Equal(t, "oms.order.notifications.staging", NotificationsQueueName())
}
