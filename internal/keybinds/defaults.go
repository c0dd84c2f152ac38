package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerListBindings(r)
	registerFormBindings(r)
	registerSearchBindings(r)
	registerHelpBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "ctrl+s", ActionSubmit)
}

func registerListBindings(r *Registry) {
	r.RegisterMultiple(ContextList, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextList, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextList, "pgup", ActionPageUp)
	r.Register(ContextList, "pgdown", ActionPageDown)
	r.Register(ContextList, "g", ActionGoToTopStart)
	r.Register(ContextList, "gg", ActionGoToTop)
	r.Register(ContextList, "home", ActionGoToTop)
	r.RegisterMultiple(ContextList, []string{"G", "end"}, ActionGoToBottom)

	r.RegisterMultiple(ContextList, []string{"e", "enter"}, ActionEditPost)
	r.Register(ContextList, "d", ActionDeletePost)
	r.Register(ContextList, "r", ActionRefresh)
	r.Register(ContextList, "y", ActionCopyPost)
	r.Register(ContextList, "/", ActionOpenSearch)
	r.RegisterMultiple(ContextList, []string{"tab", "n"}, ActionFocusForm)
	r.Register(ContextList, "esc", ActionCancelEdit)
	r.Register(ContextList, "?", ActionOpenHelp)
	r.Register(ContextList, "q", ActionQuit)
}

func registerFormBindings(r *Registry) {
	r.Register(ContextForm, "tab", ActionNextField)
	r.Register(ContextForm, "shift+tab", ActionPrevField)
	r.Register(ContextForm, "esc", ActionCancelEdit)
}

func registerSearchBindings(r *Registry) {
	r.Register(ContextSearch, "enter", ActionSearchConfirm)
	r.Register(ContextSearch, "esc", ActionSearchCancel)
}

func registerHelpBindings(r *Registry) {
	r.RegisterMultiple(ContextHelp, []string{"esc", "q", "?"}, ActionCloseModal)
}
