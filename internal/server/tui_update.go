// ABOUTME: TUI update helpers for server
// ABOUTME: Collects server state and forwards it to the TUI
package server

// status snapshots clients and tone stats
func (s *Server) status() ServerStatus {
	s.clientsMu.RLock()
	clients := make([]ClientInfo, 0, len(s.clients))
	for _, client := range s.clients {
		client.mu.RLock()
		clients = append(clients, ClientInfo{
			Name:   client.Name,
			ID:     client.ID,
			Codec:  client.Codec,
			State:  client.State,
			Served: client.Served,
		})
		client.mu.RUnlock()
	}
	s.clientsMu.RUnlock()

	s.statsMu.Lock()
	served, last := s.served, s.lastTone
	s.statsMu.Unlock()

	return ServerStatus{
		Name:     s.config.Name,
		Port:     s.config.Port,
		Clients:  clients,
		Served:   served,
		LastTone: last,
	}
}

// updateTUI sends current server state to TUI
func (s *Server) updateTUI() {
	if s.tui == nil {
		return
	}
	s.tui.Update(s.status())
}
