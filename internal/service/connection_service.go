package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
)

type ConnectionService struct{ deps *deps }

// ListConnections is a supplemented read backing the connections list view.
func (s *ConnectionService) ListConnections(ctx context.Context, caller domain.Identity) ([]*domain.Connection, error) {
	ac, err := resolveAuthContext(ctx, s.deps.repos, caller)
	if err != nil {
		return nil, err
	}
	if !ac.HasActiveCompany() {
		return nil, nil
	}
	return s.deps.repos.Connection.ListByCompany(ctx, *ac.ActiveCompany)
}

// ListChat is a supplemented read backing the connection chat thread view.
func (s *ConnectionService) ListChat(ctx context.Context, caller domain.Identity, connectionID uuid.UUID) ([]*domain.ConnectionChat, error) {
	ac, err := resolveAuthContext(ctx, s.deps.repos, caller)
	if err != nil {
		return nil, err
	}
	conn, err := s.deps.repos.Connection.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn == nil || !ac.HasActiveCompany() || !conn.Involves(*ac.ActiveCompany) {
		return nil, domain.ErrConnectionNotFound
	}
	return s.deps.repos.ConnChat.ListByConnection(ctx, connectionID)
}

// RequestConnection implements spec §4.4 request_connection.
//
// Ghosting: if a Blocked row already exists for the pair, whichever side
// blocked it, the call returns Ok with a nil connection, no row mutation and
// no notification.
func (s *ConnectionService) RequestConnection(ctx context.Context, caller domain.Identity, target uuid.UUID, initialMessage string) (*domain.Connection, error) {
	initialMessage, err := domain.ValidateLen("initial_message", initialMessage, 0, 500)
	if err != nil {
		return nil, err
	}

	var out *domain.Connection
	err = repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}
		if *ac.ActiveCompany == target {
			return domain.ErrCannotConnectToSelf
		}

		existing, err := tx.Connection.GetByPair(ctx, *ac.ActiveCompany, target)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status == domain.ConnectionBlocked {
				// Ghosted: silently succeed without touching any state.
				out = nil
				return nil
			}
			return domain.ErrConnectionAlreadyExists
		}

		lo, hi := domain.CanonicalPair(*ac.ActiveCompany, target)
		conn := &domain.Connection{
			CompanyA: lo, CompanyB: hi, Status: domain.ConnectionPending,
			RequestedBy: ac.Identity, RequestedByCompany: *ac.ActiveCompany,
			InitialMessage: initialMessage,
		}
		if err := tx.Connection.Create(ctx, conn); err != nil {
			return err
		}

		if err := s.deps.notifier(tx).emitToManagers(ctx, target,
			domain.NotifyConnectionRequested, "New connection request",
			bodyf("%s wants to connect", ac.Account.FullName)); err != nil {
			return err
		}
		out = conn
		return nil
	})
	return out, err
}

// AcceptConnection implements spec §4.4 accept_connection. Only a manager
// of the non-requesting company may accept.
func (s *ConnectionService) AcceptConnection(ctx context.Context, caller domain.Identity, connectionID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		conn, err := tx.Connection.GetByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if conn == nil || !conn.Involves(*ac.ActiveCompany) {
			return domain.ErrConnectionNotFound
		}
		if conn.Status != domain.ConnectionPending {
			return domain.ErrNotPending
		}
		if conn.RequestedByCompany == *ac.ActiveCompany {
			return domain.ErrCannotAcceptOwnRequest
		}

		if err := tx.Connection.UpdateStatus(ctx, conn.ID, domain.ConnectionAccepted, nil); err != nil {
			return err
		}
		return s.deps.notifier(tx).emitToManagers(ctx, conn.OtherParty(*ac.ActiveCompany),
			domain.NotifyConnectionAccepted, "Connection accepted",
			bodyf("%s accepted your connection request", ac.Account.FullName))
	})
}

// DeclineConnection implements spec §4.4 decline_connection: a pending
// request is simply deleted, leaving no trace for either party to re-request.
func (s *ConnectionService) DeclineConnection(ctx context.Context, caller domain.Identity, connectionID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		conn, err := tx.Connection.GetByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if conn == nil || !conn.Involves(*ac.ActiveCompany) {
			return domain.ErrConnectionNotFound
		}
		if conn.Status != domain.ConnectionPending {
			return domain.ErrNotPending
		}
		if conn.RequestedByCompany == *ac.ActiveCompany {
			return domain.ErrCannotAcceptOwnRequest
		}
		return s.deps.cascade(tx).onConnectionDelete(ctx, conn.ID)
	})
}

// CancelRequest implements spec §4.4 cancel_request: only the requester
// may withdraw a still-pending request.
func (s *ConnectionService) CancelRequest(ctx context.Context, caller domain.Identity, connectionID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		conn, err := tx.Connection.GetByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if conn == nil || !conn.Involves(*ac.ActiveCompany) {
			return domain.ErrConnectionNotFound
		}
		if conn.Status != domain.ConnectionPending {
			return domain.ErrNotPending
		}
		if conn.RequestedByCompany != *ac.ActiveCompany {
			return domain.ErrOnlyRequesterCanCancel
		}
		return s.deps.cascade(tx).onConnectionDelete(ctx, conn.ID)
	})
}

// DisconnectCompany implements spec §4.4 disconnect_company: either side of
// an Accepted connection may sever it, cascading its chat history.
func (s *ConnectionService) DisconnectCompany(ctx context.Context, caller domain.Identity, connectionID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		conn, err := tx.Connection.GetByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if conn == nil || !conn.Involves(*ac.ActiveCompany) {
			return domain.ErrConnectionNotFound
		}
		if conn.Status != domain.ConnectionAccepted {
			return domain.ErrNoAcceptedConnection
		}
		return s.deps.cascade(tx).onConnectionDelete(ctx, conn.ID)
	})
}

// BlockCompany implements spec §4.4 block_company: replaces any existing
// row for the pair with a Blocked one, recording which side blocked it.
func (s *ConnectionService) BlockCompany(ctx context.Context, caller domain.Identity, target uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}
		if *ac.ActiveCompany == target {
			return domain.ErrCannotBlockSelf
		}

		blocker := *ac.ActiveCompany
		existing, err := tx.Connection.GetByPair(ctx, blocker, target)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := tx.ConnChat.DeleteByConnection(ctx, existing.ID); err != nil {
				return err
			}
			return tx.Connection.UpdateStatus(ctx, existing.ID, domain.ConnectionBlocked, &blocker)
		}

		lo, hi := domain.CanonicalPair(blocker, target)
		conn := &domain.Connection{
			CompanyA: lo, CompanyB: hi, Status: domain.ConnectionBlocked,
			RequestedBy: ac.Identity, RequestedByCompany: blocker, BlockingCompanyID: &blocker,
		}
		return tx.Connection.Create(ctx, conn)
	})
}

// UnblockCompany implements spec §4.4 unblock_company: only the company
// that initiated the block may lift it, which removes the row entirely.
func (s *ConnectionService) UnblockCompany(ctx context.Context, caller domain.Identity, connectionID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		conn, err := tx.Connection.GetByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if conn == nil || !conn.Involves(*ac.ActiveCompany) {
			return domain.ErrConnectionNotFound
		}
		if conn.Status != domain.ConnectionBlocked {
			return domain.ErrBlockedConnection
		}
		if conn.BlockingCompanyID == nil || *conn.BlockingCompanyID != *ac.ActiveCompany {
			return domain.ErrOnlyBlockerCanUnblock
		}
		return tx.Connection.Delete(ctx, conn.ID)
	})
}

// SendConnectionChat implements spec §4.5 send_connection_chat. Pending or
// Accepted connections may carry chat; only Blocked rejects.
func (s *ConnectionService) SendConnectionChat(ctx context.Context, caller domain.Identity, connectionID uuid.UUID, text string) (*domain.ConnectionChat, error) {
	text, err := domain.ValidateLen("text", text, 1, 500)
	if err != nil {
		return nil, err
	}

	var out *domain.ConnectionChat
	err = repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.IsActiveMember() {
			return domain.ErrNotPermitted
		}

		conn, err := tx.Connection.GetByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if conn == nil || !conn.Involves(*ac.ActiveCompany) {
			return domain.ErrConnectionNotFound
		}
		if conn.Status == domain.ConnectionBlocked {
			return domain.ErrBlockedConnection
		}

		msg := &domain.ConnectionChat{ConnectionID: conn.ID, Sender: ac.Identity, Text: text}
		if err := tx.ConnChat.Create(ctx, msg); err != nil {
			return err
		}
		if err := s.deps.notifier(tx).emitToManagersExcept(ctx, conn.OtherParty(*ac.ActiveCompany), ac.Identity,
			domain.NotifyChatMessage, "New message", bodyf("%s: %s", ac.Account.FullName, text)); err != nil {
			return err
		}
		out = msg
		return nil
	})
	return out, err
}
