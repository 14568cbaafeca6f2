// SPDX-License-Identifier: MPL-2.0

// Package ormconf resolves the ORM configuration object of a JavaScript or
// TypeScript project.
//
// Load finds the config module nearest to a project directory, imports it
// with the best available loader (an installed esbuild or swc for
// TypeScript, otherwise the in-process JavaScript runtime) and selects the
// config for a context name:
//
//	res, err := ormconf.Load(ctx, "./app", ormconf.WithContextName("replica"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Filepath, res.Config["dbName"])
//
// A module may export an object, a function of the context name (possibly
// async), or an array of either.
package ormconf
