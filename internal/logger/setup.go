package logger

// Setup 根据配置初始化默认日志器
func Setup(level, output, file string) error {
	lv := ParseLogLevel(level)

	var l *Logger
	var err error
	if output == "file" && file != "" {
		l, err = NewWithFileRotation(lv, file)
	} else {
		l, err = New(lv)
	}
	if err != nil {
		return err
	}

	SetDefaultLogger(l)
	return nil
}
