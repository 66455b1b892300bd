// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/lighthouse_osc/internal/config"
	"github.com/relabs-tech/lighthouse_osc/internal/logging"
	"github.com/relabs-tech/lighthouse_osc/internal/tracking"
)

// MirrorPayload is the JSON copy of one sent pose published on MQTT.
type MirrorPayload struct {
	Session   string        `json:"session"`
	Sequence  uint64        `json:"seq"`
	Time      time.Time     `json:"time"`
	Index     uint32        `json:"index"`
	Class     string        `json:"class"`
	Role      string        `json:"role"`
	ClassCode string        `json:"class_code"`
	RoleCode  string        `json:"role_code"`
	Address   string        `json:"address"`
	Pose      tracking.Pose `json:"pose"`
	Trigger   *float32      `json:"trigger,omitempty"`
}

// DeviceTopic is the topic poses of device index are mirrored on.
func DeviceTopic(prefix string, index uint32) string {
	return fmt.Sprintf("%s/device/%d", prefix, index)
}

// DeviceTopicFilter matches every device topic under prefix.
func DeviceTopicFilter(prefix string) string {
	return prefix + "/device/+"
}

// StatusTopic carries "online" while a sender is connected and "offline"
// (the will message) after it goes away.
func StatusTopic(prefix string) string {
	return prefix + "/status"
}

// NewMirrorPayloads converts the samples of a report into payloads.
func NewMirrorPayloads(session string, rep FrameReport) []MirrorPayload {
	out := make([]MirrorPayload, 0, len(rep.Samples))
	for _, s := range rep.Samples {
		out = append(out, MirrorPayload{
			Session:   session,
			Sequence:  rep.Sequence,
			Time:      rep.Time,
			Index:     s.Device.Index,
			Class:     s.Classification.Class.String(),
			Role:      s.Classification.Role.String(),
			ClassCode: string(s.Classification.ClassCode),
			RoleCode:  string(s.Classification.RoleCode),
			Address:   s.Address,
			Pose:      s.Pose,
			Trigger:   s.Trigger,
		})
	}
	return out
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTMirror republishes sent poses as JSON. Publishing never blocks the
// sender loop: completed tokens are checked for errors, pending ones are
// left to the client.
type MQTTMirror struct {
	pub      publisher
	prefix   string
	session  string
	interval time.Duration
	last     time.Time
	client   mqtt.Client
}

func newMQTTMirror(pub publisher, prefix, session string, interval time.Duration) *MQTTMirror {
	return &MQTTMirror{pub: pub, prefix: prefix, session: session, interval: interval}
}

// ConnectMQTTMirror connects to cfg.MQTTBroker and announces the session on
// the status topic.
func ConnectMQTTMirror(cfg *config.Config) (*MQTTMirror, error) {
	session := uuid.NewString()
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(fmt.Sprintf("%s-%s", cfg.MQTTClientID, session[:8])).
		SetAutoReconnect(true).
		SetWill(StatusTopic(cfg.MQTTTopicPrefix), "offline", 1, true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	logging.Logf("mirror: connected to MQTT broker at %s (session %s)", cfg.MQTTBroker, session)

	if token := client.Publish(StatusTopic(cfg.MQTTTopicPrefix), 1, true, "online"); token.WaitTimeout(2*time.Second) && token.Error() != nil {
		logging.Logf("mirror: MQTT publish error (status): %v", token.Error())
	}

	m := newMQTTMirror(client, cfg.MQTTTopicPrefix, session, time.Duration(cfg.MQTTPublishIntervalMS)*time.Millisecond)
	m.client = client
	return m, nil
}

// Session returns the id stamped on every payload.
func (m *MQTTMirror) Session() string {
	return m.session
}

// Publish mirrors the samples of rep, at most once per interval.
func (m *MQTTMirror) Publish(rep FrameReport) {
	if len(rep.Samples) == 0 {
		return
	}
	if !m.last.IsZero() && rep.Time.Sub(m.last) < m.interval {
		return
	}
	m.last = rep.Time

	for _, p := range NewMirrorPayloads(m.session, rep) {
		payload, err := json.Marshal(p)
		if err != nil {
			logging.Logf("mirror: json marshal error (device %d): %v", p.Index, err)
			continue
		}
		token := m.pub.Publish(DeviceTopic(m.prefix, p.Index), 0, false, payload)
		select {
		case <-token.Done():
			if err := token.Error(); err != nil {
				logging.Logf("mirror: MQTT publish error (device %d): %v", p.Index, err)
			}
		default:
		}
	}
}

// Close marks the session offline and disconnects.
func (m *MQTTMirror) Close() {
	if m.client == nil {
		return
	}
	m.client.Publish(StatusTopic(m.prefix), 1, true, "offline").WaitTimeout(time.Second)
	m.client.Disconnect(250)
}
