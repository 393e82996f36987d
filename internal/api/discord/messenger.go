package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/internal/service/messaging"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
	"github.com/Alijeyrad/formsbot/internal/service/submission"
	"github.com/Alijeyrad/formsbot/pkg/logs"
)

// channelClient is the part of *discordgo.Session used to post messages.
type channelClient interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Messenger posts to channels on behalf of the services. It implements
// submission.Dispatcher and publish.Sender.
type Messenger struct {
	client channelClient
}

func NewMessenger(s *discordgo.Session) *Messenger {
	return &Messenger{client: s}
}

func (m *Messenger) Dispatch(ctx context.Context, n *submission.Notification) error {
	_, err := m.client.ChannelMessageSendComplex(n.ChannelID, notificationMessage(n), discordgo.WithContext(ctx))
	return classifyError(err)
}

func (m *Messenger) Send(ctx context.Context, channelID, content string) (string, error) {
	msg, err := m.client.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", classifyError(err)
	}
	return msg.ID, nil
}

func (m *Messenger) AttachStarters(ctx context.Context, channelID, messageID string, buttons []starter.Button) error {
	components := starterComponents(messageID, buttons)
	_, err := m.client.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return classifyError(err)
}

func (m *Messenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return classifyError(m.client.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// LogSender posts log lines to channelID.
func (m *Messenger) LogSender(channelID string) logs.SendFunc {
	return func(content string) error {
		_, err := m.client.ChannelMessageSend(channelID, content)
		return err
	}
}

// classifyError maps REST failures onto the messaging errors services
// understand. Other errors pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownChannel:
			return fmt.Errorf("%w: %v", messaging.ErrUnknownChannel, err)
		case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
			return fmt.Errorf("%w: %v", messaging.ErrForbidden, err)
		}
	}
	if rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", messaging.ErrForbidden, err)
	}
	return err
}
