// Package presets provides the built-in app, pin and single-app presets
// and the commands that apply them to a configuration.
//
// The three preset tables are loaded together by Load, from a directory,
// an HTTP base URL or the copies embedded in the binary. Tables are
// independent: one that fails to load is logged and stays nil for the
// session, and every command that needs it refuses with a preset error
// instead of failing the others.
//
//	catalog, err := presets.Load(ctx, presets.Source{})
//	if err != nil {
//	    logging.Warn("Some presets are unavailable", zap.Error(err))
//	}
//	presets.RegisterCommands(registry, catalog)
//	err = store.Dispatch(presets.AddCommonApp{Key: "edge"}.With(catalog))
package presets
