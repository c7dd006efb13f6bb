package app

import (
	"context"
	"log"

	"github.com/ayusman/handsculpt/internal/plugin"
)

// runHooks runs, in the background, every plugin declaring event as an
// action plus every enabled hook bound to event in the store.
func (a *App) runHooks(event string, req plugin.Request) {
	type call struct {
		plug *plugin.Plugin
		req  plugin.Request
	}
	var calls []call

	for _, p := range a.pluginMgr.ForAction(event) {
		r := req
		r.Action = event
		calls = append(calls, call{p, r})
	}

	if a.config.Store != nil {
		hooks, err := a.config.Store.Hooks().ListByEvent(event)
		if err != nil {
			log.Printf("Failed to load %s hooks: %v", event, err)
		}
		for _, h := range hooks {
			p, err := a.pluginMgr.Get(h.PluginName)
			if err != nil {
				log.Printf("Hook %s: plugin %s: %v", h.ID, h.PluginName, err)
				continue
			}
			r := req
			r.Action = h.ActionName
			r.Config = h.Config
			calls = append(calls, call{p, r})
		}
	}

	for _, c := range calls {
		a.hooks.Add(1)
		go func(c call) {
			defer a.hooks.Done()
			resp, err := a.pluginExec.Execute(context.Background(), c.plug, &c.req)
			if err != nil {
				log.Printf("Plugin %s %s failed: %v", c.plug.Manifest.Name, c.req.Action, err)
				return
			}
			if !resp.Success {
				log.Printf("Plugin %s %s returned error: %s", c.plug.Manifest.Name, c.req.Action, resp.Error)
			}
		}(c)
	}
}

// WaitHooks blocks until every running hook has finished.
func (a *App) WaitHooks() {
	a.hooks.Wait()
}
