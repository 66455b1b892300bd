package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/lighthouse_osc/internal/config"
	"github.com/relabs-tech/lighthouse_osc/internal/logging"
)

// FormatMirrorLine renders a mirrored pose as one console line.
func FormatMirrorLine(p MirrorPayload) string {
	pos, q := p.Pose.Position, p.Pose.Orientation
	line := fmt.Sprintf("[%s%s] #%-2d %-12s pos=(% .3f, % .3f, % .3f) q=(% .3f, % .3f, % .3f, % .3f)",
		p.ClassCode, p.RoleCode, p.Index, p.Address, pos.X, pos.Y, pos.Z, q.W, q.X, q.Y, q.Z)
	if p.Trigger != nil {
		line += fmt.Sprintf(" trigger=%.2f", *p.Trigger)
	}
	return line
}

func printMirrorMessage(out io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var p MirrorPayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			logging.Logf("console: pose unmarshal error: %v", err)
			return
		}
		fmt.Fprintln(out, FormatMirrorLine(p))
	}
}

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(fmt.Sprintf("%s-console-%s", cfg.MQTTClientID, uuid.NewString()[:8]))

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	logging.Logf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to device poses
	topic := DeviceTopicFilter(cfg.MQTTTopicPrefix)
	poseToken := client.Subscribe(topic, 0, printMirrorMessage(os.Stdout))
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	logging.Logf("console: subscribed to %s", topic)

	// Subscribe to sender status
	statusToken := client.Subscribe(StatusTopic(cfg.MQTTTopicPrefix), 1, func(_ mqtt.Client, msg mqtt.Message) {
		fmt.Printf("[STATUS] sender %s\n", msg.Payload())
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logging.Logf("console: shutting down")
	client.Disconnect(250)
	return nil
}
