package commands

// ResolveArgChoices returns the allowed values of arg. Dynamic choices see
// the provider and model from ctx, or from ctx.Config when unset.
func ResolveArgChoices(def Definition, arg ArgDefinition, ctx ChoiceContext) []string {
	if arg.Choices != nil {
		return append([]string(nil), arg.Choices...)
	}
	if arg.ChoicesFunc == nil {
		return nil
	}
	provider, model := ctx.Config.ProviderModel()
	if ctx.Provider == "" {
		ctx.Provider = provider
	}
	if ctx.Model == "" {
		ctx.Model = model
	}
	ctx.Command = &def
	ctx.Arg = &arg
	return arg.ChoicesFunc(ctx)
}

// ResolveArgMenu returns the menu to show when def is invoked without the
// argument its ArgsMenu names, or nil when no menu applies
func ResolveArgMenu(def Definition, args *Args, cfg *Config) *Menu {
	if len(def.Args) == 0 || def.ArgsMenu == nil || def.ArgsParsing == ArgsParsingNone {
		return nil
	}
	ctx := ChoiceContext{Config: cfg}

	argName := def.ArgsMenu.Arg
	if def.ArgsMenu.Auto {
		argName = ""
		for _, arg := range def.Args {
			if len(ResolveArgChoices(def, arg, ctx)) > 0 {
				argName = arg.Name
				break
			}
		}
	}
	if argName == "" {
		return nil
	}

	if args != nil {
		if _, given := args.Values[argName]; given {
			return nil
		}
		if args.Raw != "" && args.Values == nil {
			return nil
		}
	}

	for _, arg := range def.Args {
		if arg.Name != argName {
			continue
		}
		choices := ResolveArgChoices(def, arg, ctx)
		if len(choices) == 0 {
			return nil
		}
		menu := &Menu{Arg: arg, Choices: choices}
		if !def.ArgsMenu.Auto {
			menu.Title = def.ArgsMenu.Title
		}
		return menu
	}
	return nil
}
